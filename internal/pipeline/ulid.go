package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Session IDs are ULIDs: a 48-bit millisecond timestamp followed by 80 bits of
// randomness, Crockford base32 encoded to 26 characters. IDs created in the
// same millisecond embed a sequence number so they stay unique and sortable.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

type ulidSource struct {
	mu      sync.Mutex
	lastMs  uint64
	lastSeq uint16
	now     func() time.Time
}

var sessionIDs = &ulidSource{now: time.Now}

// NewSessionID returns a new ULID.
func NewSessionID() string {
	return sessionIDs.next()
}

func (u *ulidSource) next() string {
	u.mu.Lock()
	defer u.mu.Unlock()

	ms := uint64(u.now().UnixMilli())
	if ms == u.lastMs {
		u.lastSeq++
	} else {
		u.lastMs = ms
		u.lastSeq = 0
	}

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ms<<16)
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], u.lastSeq)
	return encodeCrockford(b)
}

// encodeCrockford writes the 128 bits of b as 26 base32 digits, most
// significant first. The leading digit carries only the top 3 bits.
func encodeCrockford(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[0:8])
	lo := binary.BigEndian.Uint64(b[8:16])

	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
