package continuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/gamesearch/internal/db"
	"github.com/kailas-cloud/gamesearch/internal/domain"
	domcont "github.com/kailas-cloud/gamesearch/internal/domain/search/continuation"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/mode"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/query"
)

var keyPrefix = domain.KeyPrefix + "cursor:"

// DefaultTTL is how long a cursor stays valid after its last use.
const DefaultTTL = 30 * time.Minute

// store is the consumer interface for continuation records (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Repo persists continuations under opaque random tokens.
type Repo struct {
	store store
	ttl   time.Duration
}

// New creates a continuation repository. A non-positive ttl uses DefaultTTL.
func New(s store, ttl time.Duration) *Repo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repo{store: s, ttl: ttl}
}

type record struct {
	Query      string          `json:"query"`
	Mode       mode.Mode       `json:"mode"`
	Descriptor json.RawMessage `json:"descriptor,omitempty"`
	Embedding  []float32       `json:"embedding,omitempty"`
}

// Save stores c under token, or under a fresh token when token is empty,
// and restarts its TTL. It returns the token.
func (r *Repo) Save(ctx context.Context, token string, c domcont.Continuation) (string, error) {
	if !c.IsValid() {
		return "", fmt.Errorf("%w: incomplete continuation", domain.ErrInvalidRequest)
	}
	if token == "" {
		token = uuid.NewString()
	}

	rec := record{Query: c.Query, Mode: c.Mode, Embedding: c.Embedding}
	if !c.Descriptor.IsZero() {
		raw, err := json.Marshal(c.Descriptor)
		if err != nil {
			return "", fmt.Errorf("marshal descriptor: %w", err)
		}
		rec.Descriptor = raw
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal continuation: %w", err)
	}

	if err := r.store.SetWithTTL(ctx, keyPrefix+token, data, r.ttl); err != nil {
		return "", fmt.Errorf("%w: save continuation: %w", domain.ErrDatabase, err)
	}
	return token, nil
}

// Load returns the continuation behind token.
// Unknown, expired and malformed tokens all yield domain.ErrContinuationNotFound.
func (r *Repo) Load(ctx context.Context, token string) (domcont.Continuation, error) {
	if _, err := uuid.Parse(token); err != nil {
		return domcont.Continuation{}, domain.ErrContinuationNotFound
	}

	data, err := r.store.Get(ctx, keyPrefix+token)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domcont.Continuation{}, domain.ErrContinuationNotFound
		}
		return domcont.Continuation{}, fmt.Errorf("%w: load continuation: %w", domain.ErrDatabase, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domcont.Continuation{}, fmt.Errorf("%w: decode continuation: %w", domain.ErrContinuationNotFound, err)
	}

	c := domcont.Continuation{Query: rec.Query, Mode: rec.Mode, Embedding: rec.Embedding}
	if len(rec.Descriptor) > 0 {
		// Reparsing restores instants from their RFC 3339 form.
		d, err := query.Parse(rec.Descriptor, query.Options{GenrePolicy: query.GenrePass})
		if err != nil {
			return domcont.Continuation{}, fmt.Errorf("%w: decode descriptor: %w", domain.ErrContinuationNotFound, err)
		}
		c.Descriptor = d
	}
	if !c.IsValid() {
		return domcont.Continuation{}, domain.ErrContinuationNotFound
	}
	return c, nil
}

// Delete drops the continuation behind token. Unknown tokens are a no-op.
func (r *Repo) Delete(ctx context.Context, token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return nil
	}
	if err := r.store.Del(ctx, keyPrefix+token); err != nil {
		return fmt.Errorf("%w: delete continuation: %w", domain.ErrDatabase, err)
	}
	return nil
}
