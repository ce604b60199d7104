package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/gamesearch/internal/domain"
	"github.com/kailas-cloud/gamesearch/internal/domain/genre"
)

// GenrePolicy decides what happens to a genre value outside the allowlist.
type GenrePolicy string

// Genre policies.
const (
	// GenreReject fails validation on an unknown genre.
	GenreReject GenrePolicy = "reject"
	// GenrePass keeps unknown genres as the model wrote them.
	GenrePass GenrePolicy = "pass"
)

// IsValid checks if the policy is one of the supported values.
func (p GenrePolicy) IsValid() bool { return p == GenreReject || p == GenrePass }

// Options parameterize descriptor validation.
type Options struct {
	Genres      genre.Allowlist
	GenrePolicy GenrePolicy
}

// Operators that run server-side code; never allowed in a descriptor.
var forbiddenOperators = map[string]struct{}{
	"$where":       {},
	"$function":    {},
	"$accumulator": {},
}

// Pipeline stages a descriptor may contain. Projection and paging stages are
// appended by the executor, never taken from the model.
var allowedStages = map[string]struct{}{
	"$search": {},
	"$match":  {},
}

type rawDescriptor struct {
	Query   json.RawMessage `json:"query"`
	Project map[string]any  `json:"project"`
	Type    string          `json:"type"`
}

// Parse decodes an unverified JSON descriptor and validates it.
// Shape problems (missing field, wrong JSON type) wrap domain.ErrMalformedOutput;
// content problems (bad date, unknown genre, forbidden operator) wrap
// domain.ErrInvalidDescriptor.
func Parse(data []byte, opts Options) (Descriptor, error) {
	var raw rawDescriptor
	if err := json.Unmarshal(data, &raw); err != nil {
		return Descriptor{}, fmt.Errorf("%w: decode descriptor: %w", domain.ErrMalformedOutput, err)
	}

	if raw.Type == "" {
		return Descriptor{}, fmt.Errorf("%w: missing field \"type\"", domain.ErrMalformedOutput)
	}
	typ := Type(raw.Type)
	if !typ.IsValid() {
		return Descriptor{}, fmt.Errorf("%w: unknown type %q", domain.ErrMalformedOutput, raw.Type)
	}
	trimmed := bytes.TrimSpace(raw.Query)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Descriptor{}, fmt.Errorf("%w: missing field \"query\"", domain.ErrMalformedOutput)
	}
	if raw.Project == nil {
		return Descriptor{}, fmt.Errorf("%w: missing field \"project\"", domain.ErrMalformedOutput)
	}

	var body any
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return Descriptor{}, fmt.Errorf("%w: decode query: %w", domain.ErrMalformedOutput, err)
	}

	return build(typ, body, raw.Project, opts)
}

func build(typ Type, body any, project map[string]any, opts Options) (Descriptor, error) {
	if opts.GenrePolicy == "" {
		opts.GenrePolicy = GenreReject
	}

	d := Descriptor{typ: typ, project: sanitizeProject(project)}

	switch typ {
	case Simple:
		filter, ok := body.(map[string]any)
		if !ok {
			return Descriptor{}, fmt.Errorf("%w: SIMPLE query must be an object", domain.ErrMalformedOutput)
		}
		if containsKey(filter, FieldFranchises) {
			return Descriptor{}, domain.NewValidationError("$.query",
				"franchise conditions require the AGGREGATE shape")
		}
		normalized, err := normalize(filter, "$.query", opts)
		if err != nil {
			return Descriptor{}, err
		}
		d.filter = normalized.(map[string]any)
	case Aggregate:
		stages, err := asStages(body)
		if err != nil {
			return Descriptor{}, err
		}
		d.pipeline = make([]map[string]any, len(stages))
		for i, st := range stages {
			path := indexPath("$.query", i)
			if err := checkStage(st, i, path); err != nil {
				return Descriptor{}, err
			}
			normalized, err := normalize(st, path, opts)
			if err != nil {
				return Descriptor{}, err
			}
			d.pipeline[i] = normalized.(map[string]any)
		}
	}

	return d, nil
}

func asStages(body any) ([]map[string]any, error) {
	list, ok := body.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: AGGREGATE query must be an array of stages", domain.ErrMalformedOutput)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: AGGREGATE query has no stages", domain.ErrMalformedOutput)
	}
	stages := make([]map[string]any, len(list))
	for i, item := range list {
		st, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: stage %d is not an object", domain.ErrMalformedOutput, i)
		}
		stages[i] = st
	}
	return stages, nil
}

func checkStage(st map[string]any, i int, path string) error {
	if len(st) != 1 {
		return domain.NewValidationError(path, "a stage must have exactly one operator")
	}
	for name := range st {
		if _, ok := allowedStages[name]; !ok {
			return domain.NewValidationError(path, "stage "+name+" is not allowed")
		}
		if name == "$search" && i != 0 {
			return domain.NewValidationError(path, "$search must be the first stage")
		}
	}
	return nil
}

// normalize converts dates, checks operators and constrains genres in one pass.
func normalize(v any, path string, opts Options) (any, error) {
	dated, err := normalizeDates(v, path)
	if err != nil {
		return nil, err
	}
	w := walker{opts: opts}
	return w.walk(dated, path, false)
}

type walker struct {
	opts Options
}

func (w walker) walk(v any, path string, inGenres bool) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		return w.walkMap(t, path, inGenres)
	case []any:
		for i, item := range t {
			n, err := w.walk(item, indexPath(path, i), inGenres)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	case string:
		if !inGenres {
			return t, nil
		}
		return w.genre(t, path)
	default:
		return v, nil
	}
}

func (w walker) walkMap(m map[string]any, path string, inGenres bool) (any, error) {
	searchesGenres := pathIsGenres(m["path"])

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		childPath := path + "." + k
		if _, bad := forbiddenOperators[k]; bad {
			return nil, domain.NewValidationError(childPath, "operator "+k+" is not allowed")
		}
		childGenres := inGenres || k == FieldGenres || (searchesGenres && (k == "value" || k == "query"))
		if k == "$regex" || k == "$options" {
			childGenres = false
		}
		n, err := w.walk(m[k], childPath, childGenres)
		if err != nil {
			return nil, err
		}
		m[k] = n
	}
	return m, nil
}

func (w walker) genre(v, path string) (any, error) {
	if w.opts.Genres.IsEmpty() {
		return v, nil
	}
	if c, ok := w.opts.Genres.Canonical(v); ok {
		return c, nil
	}
	if w.opts.GenrePolicy == GenrePass {
		return v, nil
	}
	return nil, domain.NewValidationError(path, fmt.Sprintf("genre %q is not in the allowlist", v))
}

// pathIsGenres reports whether a search operator's "path" targets the genres field.
func pathIsGenres(p any) bool {
	switch t := p.(type) {
	case string:
		return t == FieldGenres
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == FieldGenres {
				return true
			}
		}
	}
	return false
}

func containsKey(v any, key string) bool {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if k == key || containsKey(child, key) {
				return true
			}
		}
	case []any:
		for _, child := range t {
			if containsKey(child, key) {
				return true
			}
		}
	}
	return false
}

// sanitizeProject keeps allowed fields set to a truthy flag; an empty result
// falls back to projecting every allowed field.
func sanitizeProject(p map[string]any) map[string]int {
	out := make(map[string]int, len(ProjectableFields))
	for _, f := range ProjectableFields {
		if truthy(p[f]) {
			out[f] = 1
		}
	}
	if len(out) == 0 {
		for _, f := range ProjectableFields {
			out[f] = 1
		}
	}
	return out
}

func truthy(v any) bool {
	switch t := v.(type) {
	case float64:
		return t == 1
	case int:
		return t == 1
	case bool:
		return t
	default:
		return false
	}
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
