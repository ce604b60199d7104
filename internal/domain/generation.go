package domain

import "context"

// TextGenerator produces a single JSON object from a system instruction and
// untrusted user text. The returned bytes are unverified: callers decode and
// validate them.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, instruction, input string) ([]byte, error)
}
