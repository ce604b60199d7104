package continuation

import (
	"github.com/kailas-cloud/gamesearch/internal/domain/search/mode"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/query"
)

// Continuation is the server-side record behind a search cursor: enough to
// replay later pages with the exact artifact page 1 used.
// The gate verdict is implied; only allowed searches get a cursor.
type Continuation struct {
	Query      string
	Mode       mode.Mode
	Descriptor query.Descriptor
	Embedding  []float32
}

// IsValid reports whether the record carries the artifact its mode needs.
func (c Continuation) IsValid() bool {
	if c.Query == "" || !c.Mode.IsValid() {
		return false
	}
	if c.Mode.UsesVector() {
		return len(c.Embedding) > 0 && c.Descriptor.IsZero()
	}
	return !c.Descriptor.IsZero() && len(c.Embedding) == 0
}
