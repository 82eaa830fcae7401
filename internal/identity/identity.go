package identity

import (
	"encoding/hex"
	"strconv"
	"strings"
	"sync"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Generator hands out node identifiers for a single compile run.
type Generator interface {
	NewID() string
}

// NewID returns a fresh random identifier: a v4 UUID rendered as 32
// lowercase hex characters with no separators.
func NewID() string {
	return Format(uuid.New())
}

// Format renders id in the separator free form used for url_name values.
func Format(id uuid.UUID) string {
	return hex.EncodeToString(id[:])
}

// Random is the default Generator.
type Random struct{}

func (Random) NewID() string { return NewID() }

// Seeded derives identifiers from a seed and a running counter, so two runs
// over the same tree with the same seed produce identical output. Used for
// reproducible builds and golden tests.
type Seeded struct {
	seed string
	mu   sync.Mutex
	next uint64
}

// NewSeeded returns a Seeded generator. A blank seed falls back to Random
// behaviour through a freshly generated seed.
func NewSeeded(seed string) *Seeded {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		seed = NewID()
	}
	return &Seeded{seed: seed}
}

func (s *Seeded) NewID() string {
	s.mu.Lock()
	s.next++
	n := s.next
	s.mu.Unlock()
	return Format(UUID("coursegen:" + s.seed + ":" + strconv.FormatUint(n, 10)))
}

// UUID derives a deterministic UUID from key using go-hashid.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}
