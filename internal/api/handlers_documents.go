package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docqa/internal/doctree"
	"github.com/dgallion1/docqa/internal/parser"
	"github.com/dgallion1/docqa/internal/pipeline"
)

type sectionInfo struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Level int    `json:"level"`
	Runes int    `json:"runes"`
}

type documentResponse struct {
	*pipeline.Document
	Sections []sectionInfo `json:"sections"`
}

func describe(doc *pipeline.Document) documentResponse {
	secs := make([]sectionInfo, len(doc.Sections))
	for i, sec := range doc.Sections {
		secs[i] = sectionInfo{
			Index: sec.Index,
			Title: sec.Title,
			Level: sec.Level,
			Runes: doctree.RuneLen(sec.Body),
		}
	}
	return documentResponse{Document: doc, Sections: secs}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	filename, data, status, err := s.readUpload(r)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	doc, err := s.service.Ingest(filename, r.FormValue("title"), data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, describe(doc))
}

func (s *Server) handleBatchUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		data, err := s.readFileHeader(fh)
		if err == nil {
			var doc *pipeline.Document
			if doc, err = s.service.Ingest(filename, "", data); err == nil {
				results = append(results, map[string]any{
					"filename": filename,
					"doc_id":   doc.ID,
					"title":    doc.Title,
					"sections": len(doc.Sections),
				})
				continue
			}
		}
		results = append(results, map[string]any{
			"filename": filename,
			"error":    err.Error(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": results})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.service.Documents()
	out := make([]map[string]any, len(docs))
	for i, doc := range docs {
		out[i] = map[string]any{
			"doc_id":     doc.ID,
			"title":      doc.Title,
			"filename":   doc.Filename,
			"sections":   len(doc.Sections),
			"created_at": doc.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.service.Document(chi.URLParam(r, "docID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, describe(doc))
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if !s.service.DeleteDocument(docID) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "deleted": true})
}

// readUpload reads the "file" form field. On failure it also returns the
// status to answer with.
func (s *Server) readUpload(r *http.Request) (string, []byte, int, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, http.StatusBadRequest, fmt.Errorf("file is required: %w", err)
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		return "", nil, http.StatusUnsupportedMediaType, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	data, err := s.readLimited(file)
	if err != nil {
		return "", nil, http.StatusRequestEntityTooLarge, err
	}
	return filename, data, 0, nil
}

func (s *Server) readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	if !parser.IsSupportedExtension(fh.Filename) {
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(fh.Filename))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return s.readLimited(f)
}

func (s *Server) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return data, nil
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
