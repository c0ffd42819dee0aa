package pipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docqa/internal/doctree"
	"github.com/dgallion1/docqa/internal/parser"
	"github.com/dgallion1/docqa/internal/qa"
	"github.com/dgallion1/docqa/internal/section"
)

const article = `<html><head><title>Jane Doe</title></head><body>
<h1>Jane Doe</h1>
<p>Jane Doe is a painter.[1]</p>
<h2>Contents</h2>
<p>1 Early life 2 Career</p>
<h2>Early life [edit]</h2>
<p>She was born in Lyon in 1971.</p>
<h2>Career</h2>
<p>She moved to Canada in 1995 and opened a studio.</p>
</body></html>`

func newTestService(s qa.Scorer) *Service {
	return NewService(New(s, testLog, section.DefaultConfig(), 2), time.Hour, testLog)
}

func TestService_IngestAndAsk(t *testing.T) {
	svc := newTestService(qa.LexicalScorer{})

	doc, err := svc.Ingest("jane.html", "", []byte(article))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", doc.Title)
	assert.Len(t, doc.ID, 16)
	require.Len(t, doc.Sections, 3)
	assert.Equal(t, "Early life", doc.Sections[1].Title)
	assert.Equal(t, "Jane Doe is a painter.", doc.Sections[0].Body)

	res, err := svc.Ask(context.Background(), doc.ID, "", "When did she move to Canada?", 2)
	require.NoError(t, err)
	assert.Len(t, res.SessionID, 26)
	assert.Equal(t, doc.ID, res.DocID)
	require.NotEmpty(t, res.Answers)
	assert.Equal(t, "Career", res.Answers[0].Title)
	assert.Equal(t, "She moved to Canada in 1995 and opened a studio.", res.Answers[0].Highlight)
}

func TestService_IngestIsContentAddressed(t *testing.T) {
	svc := newTestService(qa.LexicalScorer{})

	a, err := svc.Ingest("a.html", "", []byte(article))
	require.NoError(t, err)
	b, err := svc.Ingest("b.html", "Override", []byte(article))
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "Override", b.Title)
	assert.Equal(t, 1, svc.DocumentCount())
}

func TestService_IngestErrors(t *testing.T) {
	svc := newTestService(qa.LexicalScorer{})

	_, err := svc.Ingest("notes.xyz", "", []byte("hello"))
	assert.ErrorIs(t, err, parser.ErrUnsupportedFormat)

	_, err = svc.Ingest("empty.html", "", []byte("<html><body><p>no headings</p></body></html>"))
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestService_AskUnknownDocument(t *testing.T) {
	svc := newTestService(qa.LexicalScorer{})
	_, err := svc.Ask(context.Background(), "missing", "", "q", 1)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestService_DeleteDocument(t *testing.T) {
	svc := newTestService(qa.LexicalScorer{})
	doc, err := svc.Ingest("jane.html", "", []byte(article))
	require.NoError(t, err)

	assert.True(t, svc.DeleteDocument(doc.ID))
	_, err = svc.Document(doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestService_NewQuestionSupersedesInflight(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	s := qa.ScorerFunc(func(ctx context.Context, _, _ string) (qa.Answer, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return qa.Answer{}, ctx.Err()
		}
		return qa.Answer{Score: 0.1}, nil
	})
	svc := NewService(New(s, testLog, section.DefaultConfig(), 1), time.Hour, testLog)
	svc.docs.Put(&Document{ID: "d", Sections: []doctree.Section{{Title: "T", Level: 1, Body: "body"}}})

	errc := make(chan error, 1)
	go func() {
		_, err := svc.Ask(context.Background(), "d", "sess", "first?", 1)
		errc <- err
	}()
	<-started

	res, err := svc.Ask(context.Background(), "d", "sess", "second?", 1)
	require.NoError(t, err)
	assert.Equal(t, "sess", res.SessionID)
	assert.Len(t, res.Answers, 1)

	assert.ErrorIs(t, <-errc, ErrSuperseded)
	assert.Equal(t, 0, svc.ActiveSessions())
}

func TestService_AskFile(t *testing.T) {
	svc := newTestService(qa.LexicalScorer{})

	res, err := svc.AskFile(context.Background(), "jane.html", []byte(article), "Where was she born?", 1)
	require.NoError(t, err)
	require.Len(t, res.Answers, 1)
	assert.Equal(t, "Early life", res.Answers[0].Title)
	assert.Empty(t, res.DocID)
	assert.Equal(t, 0, svc.DocumentCount())
}

func TestService_StartStop(t *testing.T) {
	svc := newTestService(qa.LexicalScorer{})
	svc.cleanupEvery = time.Millisecond
	svc.docs.ttl = 0
	svc.docs.Put(&Document{ID: "x"})

	svc.Start(context.Background())
	assert.Eventually(t, func() bool { return svc.DocumentCount() == 0 }, time.Second, 5*time.Millisecond)
	svc.Stop()
}
