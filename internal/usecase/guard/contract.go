package guard

import "context"

// Generator produces one JSON object from an instruction and untrusted input.
type Generator interface {
	GenerateJSON(ctx context.Context, instruction, input string) ([]byte, error)
}
