package continuation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/gamesearch/internal/db"
	"github.com/kailas-cloud/gamesearch/internal/domain"
	domcont "github.com/kailas-cloud/gamesearch/internal/domain/search/continuation"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/mode"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/query"
)

func structuredContinuation(t *testing.T) domcont.Continuation {
	t.Helper()
	d, err := query.Parse([]byte(`{
		"query": {"genres": "Shooter", "first_release_date": {"$gte": "2010-01-01T00:00:00Z"}},
		"project": {"name": 1, "genres": 1},
		"type": "SIMPLE"
	}`), query.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return domcont.Continuation{Query: "shooters since 2010", Mode: mode.Structured, Descriptor: d}
}

func TestSaveLoad_Structured(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	in := structuredContinuation(t)

	token, err := repo.Save(ctx, "", in)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := uuid.Parse(token); err != nil {
		t.Fatalf("token %q is not a uuid", token)
	}
	if ms.ttls[keyPrefix+token] != DefaultTTL {
		t.Errorf("ttl = %v, want %v", ms.ttls[keyPrefix+token], DefaultTTL)
	}

	out, err := repo.Load(ctx, token)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Query != in.Query || out.Mode != mode.Structured {
		t.Errorf("unexpected continuation: %+v", out)
	}
	rng := out.Descriptor.Filter()["first_release_date"].(map[string]any)
	ts, ok := rng["$gte"].(time.Time)
	if !ok || !ts.Equal(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("$gte = %#v, want the original instant", rng["$gte"])
	}
}

func TestSaveLoad_Vector(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	in := domcont.Continuation{Query: "cozy farming", Mode: mode.Vector, Embedding: []float32{0.5, -0.25}}

	token, err := repo.Save(ctx, "", in)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := repo.Load(ctx, token)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out.Embedding) != 2 || out.Embedding[1] != -0.25 {
		t.Errorf("Embedding = %v", out.Embedding)
	}
}

func TestSave_ReusesToken(t *testing.T) {
	repo, ms := newTestRepo(t)
	token := uuid.NewString()

	got, err := repo.Save(context.Background(), token, structuredContinuation(t))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got != token {
		t.Errorf("token = %q, want %q", got, token)
	}
	if _, ok := ms.data[keyPrefix+token]; !ok {
		t.Error("record not stored under the given token")
	}
}

func TestSave_RejectsIncomplete(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.Save(context.Background(), "", domcont.Continuation{Query: "x", Mode: mode.Vector})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestSave_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.setErr = &db.Error{Op: db.OpSet, Err: errors.New("OOM")}

	_, err := repo.Save(context.Background(), "", structuredContinuation(t))
	if !errors.Is(err, domain.ErrDatabase) {
		t.Errorf("error = %v, want ErrDatabase", err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	for _, token := range []string{"", "not-a-uuid", uuid.NewString()} {
		if _, err := repo.Load(ctx, token); !errors.Is(err, domain.ErrContinuationNotFound) {
			t.Errorf("Load(%q) error = %v, want ErrContinuationNotFound", token, err)
		}
	}

	garbage := uuid.NewString()
	ms.data[keyPrefix+garbage] = []byte("{not json")
	if _, err := repo.Load(ctx, garbage); !errors.Is(err, domain.ErrContinuationNotFound) {
		t.Errorf("corrupt record error = %v, want ErrContinuationNotFound", err)
	}
}

func TestLoad_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.getErr = &db.Error{Op: db.OpGet, Err: errors.New("timeout")}

	_, err := repo.Load(context.Background(), uuid.NewString())
	if !errors.Is(err, domain.ErrDatabase) {
		t.Errorf("error = %v, want ErrDatabase", err)
	}
}

func TestDelete(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	token, err := repo.Save(ctx, "", structuredContinuation(t))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Delete(ctx, token); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := ms.data[keyPrefix+token]; ok {
		t.Error("record still stored after Delete")
	}
	if _, err := repo.Load(ctx, token); !errors.Is(err, domain.ErrContinuationNotFound) {
		t.Errorf("Load after Delete error = %v, want ErrContinuationNotFound", err)
	}
	if err := repo.Delete(ctx, "not-a-uuid"); err != nil {
		t.Errorf("Delete(malformed) = %v, want nil", err)
	}
}

func TestDelete_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.delErr = &db.Error{Op: db.OpDel, Err: errors.New("READONLY")}

	if err := repo.Delete(context.Background(), uuid.NewString()); !errors.Is(err, domain.ErrDatabase) {
		t.Errorf("error = %v, want ErrDatabase", err)
	}
}
