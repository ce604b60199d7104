// Package query holds the compiled query descriptor and the deterministic
// validation applied to every descriptor before it reaches the store.
package query

import "encoding/json"

// Type is the descriptor shape.
type Type string

// Descriptor shapes.
const (
	// Simple is a single filter object run as a find.
	Simple Type = "SIMPLE"
	// Aggregate is an ordered list of pipeline stages.
	Aggregate Type = "AGGREGATE"
)

// IsValid checks if the type is one of the supported shapes.
func (t Type) IsValid() bool { return t == Simple || t == Aggregate }

// Fields the structured path may project.
const (
	FieldID               = "_id"
	FieldName             = "name"
	FieldSummary          = "summary"
	FieldGenres           = "genres"
	FieldFranchises       = "franchises"
	FieldFirstReleaseDate = "first_release_date"
)

// ProjectableFields is the fixed field set a descriptor may project.
var ProjectableFields = []string{FieldName, FieldSummary, FieldGenres, FieldFirstReleaseDate}

// Descriptor is a validated, normalized query ready for execution.
// Accessors return copies, so a descriptor never changes once built.
type Descriptor struct {
	typ      Type
	filter   map[string]any
	pipeline []map[string]any
	project  map[string]int
}

// Type returns the descriptor shape.
func (d Descriptor) Type() Type { return d.typ }

// IsZero reports whether d was never built.
func (d Descriptor) IsZero() bool { return d.typ == "" }

// Filter returns a copy of the SIMPLE filter (nil for AGGREGATE).
func (d Descriptor) Filter() map[string]any {
	if d.filter == nil {
		return nil
	}
	return cloneMap(d.filter)
}

// Pipeline returns a copy of the AGGREGATE stages (nil for SIMPLE).
func (d Descriptor) Pipeline() []map[string]any {
	if d.pipeline == nil {
		return nil
	}
	out := make([]map[string]any, len(d.pipeline))
	for i, st := range d.pipeline {
		out[i] = cloneMap(st)
	}
	return out
}

// Project returns a copy of the projection.
func (d Descriptor) Project() map[string]int {
	out := make(map[string]int, len(d.project))
	for k, v := range d.project {
		out[k] = v
	}
	return out
}

type wireDescriptor struct {
	Query   any            `json:"query"`
	Project map[string]int `json:"project"`
	Type    Type           `json:"type"`
}

// MarshalJSON renders the descriptor in the same shape the compiler accepts,
// with instants as RFC 3339 strings, so a caller can echo it back.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	w := wireDescriptor{Project: d.project, Type: d.typ}
	if d.typ == Aggregate {
		w.Query = d.pipeline
	} else {
		w.Query = d.filter
	}
	return json.Marshal(w)
}
