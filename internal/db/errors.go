package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrNotReady    = errors.New("db: not ready")
)

// Op constants name the store command for error context.
const (
	OpFind      = "find"
	OpAggregate = "aggregate"
	OpDistinct  = "distinct"
	OpDecode    = "decode"
	OpPing      = "ping"
	OpGet       = "GET"
	OpSet       = "SET"
	OpDel       = "DEL"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
