package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesearch/internal/domain"
	"github.com/kailas-cloud/gamesearch/internal/domain/game"
	"github.com/kailas-cloud/gamesearch/internal/domain/genre"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/continuation"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/event"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/mode"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/request"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/state"
	"github.com/kailas-cloud/gamesearch/internal/logger"
	"github.com/kailas-cloud/gamesearch/internal/metrics"
)

// Artifact reuse sources.
const (
	sourceCursor = "cursor"
	sourceEcho   = "echo"
)

// Result is a finished search: the terminal state and, when another page
// exists and a continuation store is configured, the cursor for it.
type Result struct {
	State  *state.QueryState
	Cursor string
}

// Service runs the search pipeline: safety gate, then either compile and
// execute or embed and execute.
type Service struct {
	gate     Gate
	compiler Compiler
	vectors  Vectorizer
	executor Executor
	genres   genre.Allowlist

	conts  Continuations
	events Publisher
	logger *zap.Logger
	now    func() time.Time
}

// New creates a search orchestrator. genres is read-only for the service lifetime.
func New(gate Gate, compiler Compiler, vectors Vectorizer, executor Executor, genres genre.Allowlist) *Service {
	return &Service{
		gate:     gate,
		compiler: compiler,
		vectors:  vectors,
		executor: executor,
		genres:   genres,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
}

// WithContinuations enables server-side cursors.
func (s *Service) WithContinuations(c Continuations) *Service {
	s.conts = c
	return s
}

// WithEvents publishes one event per finished search.
func (s *Service) WithEvents(p Publisher) *Service {
	s.events = p
	return s
}

// WithLogger sets the fallback logger used when the context carries none.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Search runs one page of a search.
// A policy rejection is not an error: the returned state carries the message.
func (s *Service) Search(ctx context.Context, req request.Request) (Result, error) {
	start := s.now()
	res, err := s.run(ctx, req)
	s.finish(ctx, attempt{
		query:    req.Query(),
		mode:     req.Mode(),
		page:     req.Page().Number(),
		pageSize: req.Page().Size(),
	}, res, err, start)
	return res, err
}

// Refuse records a search the transport turned away before a request could
// be built, so malformed traffic shows up in outcomes and events.
func (s *Service) Refuse(ctx context.Context, q string, m mode.Mode, err error) {
	s.finish(ctx, attempt{query: q, mode: m}, Result{}, err, s.now())
}

// attempt is what is known about a search before it runs.
type attempt struct {
	query    string
	mode     mode.Mode
	page     int
	pageSize int
}

func (s *Service) run(ctx context.Context, req request.Request) (Result, error) {
	if req.Cursor() != "" {
		return s.resume(ctx, req)
	}

	st, err := state.New(req.Query(), req.Mode(), req.Page())
	if err != nil {
		return Result{}, fmt.Errorf("start search: %w", err)
	}
	st.SetGenres(s.genres)

	if err = s.seed(st, req); err != nil {
		return Result{State: st}, err
	}

	v, err := s.gate.Evaluate(ctx, st.Query())
	if err != nil {
		return Result{State: st}, fmt.Errorf("safety gate: %w", err)
	}
	if err = st.Evaluate(v); err != nil {
		return Result{State: st}, err
	}
	if st.Phase() == state.Rejected {
		return Result{State: st}, nil
	}

	return s.execute(ctx, st, "")
}

// seed validates a descriptor or embedding echoed by the caller.
// The bytes are untrusted, so they pass the same checks as model output.
func (s *Service) seed(st *state.QueryState, req request.Request) error {
	if raw := req.Descriptor(); len(raw) > 0 {
		d, err := s.compiler.Restore(raw, st.Genres())
		if err != nil {
			return fmt.Errorf("processed_output: %w", err)
		}
		if err = st.UseDescriptor(d); err != nil {
			return err
		}
		metrics.SearchArtifactReuseTotal.WithLabelValues(sourceEcho).Inc()
		return nil
	}
	if vec := req.Embedding(); len(vec) > 0 {
		if err := st.UseEmbedding(vec); err != nil {
			return err
		}
		metrics.SearchArtifactReuseTotal.WithLabelValues(sourceEcho).Inc()
	}
	return nil
}

// resume replays a search from a stored continuation. The record was written
// by this service after an allowed verdict, so the gate is not asked again.
func (s *Service) resume(ctx context.Context, req request.Request) (Result, error) {
	if s.conts == nil {
		return Result{}, fmt.Errorf("%w: cursors are disabled", domain.ErrContinuationNotFound)
	}
	c, err := s.conts.Load(ctx, req.Cursor())
	if err != nil {
		return Result{}, fmt.Errorf("load cursor: %w", err)
	}
	if q := req.Query(); q != "" && q != c.Query {
		return Result{}, fmt.Errorf("%w: query does not match cursor", domain.ErrInvalidRequest)
	}

	st, err := state.New(c.Query, c.Mode, req.Page())
	if err != nil {
		return Result{}, fmt.Errorf("start search: %w", err)
	}
	st.SetGenres(s.genres)

	if c.Mode.UsesVector() {
		err = st.UseEmbedding(c.Embedding)
	} else {
		err = st.UseDescriptor(c.Descriptor)
	}
	if err != nil {
		return Result{State: st}, err
	}
	if err = st.Resume(); err != nil {
		return Result{State: st}, err
	}
	metrics.SearchArtifactReuseTotal.WithLabelValues(sourceCursor).Inc()

	return s.execute(ctx, st, req.Cursor())
}

// execute fills in the missing artifact, runs the store read and completes st.
func (s *Service) execute(ctx context.Context, st *state.QueryState, token string) (Result, error) {
	var (
		games   []game.Game
		hasNext bool
		err     error
	)

	if st.Mode().UsesVector() {
		vec, ok := st.Embedding()
		if !ok {
			if vec, err = s.vectors.Embed(ctx, st.Query()); err != nil {
				return Result{State: st}, fmt.Errorf("vectorize query: %w", err)
			}
			if err = st.SetEmbedding(vec); err != nil {
				return Result{State: st}, err
			}
		}
		games, hasNext, err = s.executor.ExecuteVector(ctx, vec, st.Page())
	} else {
		d, ok := st.Descriptor()
		if !ok {
			if d, err = s.compiler.Compile(ctx, st.Query(), st.Genres()); err != nil {
				return Result{State: st}, fmt.Errorf("compile query: %w", err)
			}
			if err = st.SetDescriptor(d); err != nil {
				return Result{State: st}, err
			}
		}
		games, hasNext, err = s.executor.ExecuteStructured(ctx, d, st.Page())
	}
	if err != nil {
		return Result{State: st}, err
	}

	if err = st.Complete(games, hasNext); err != nil {
		return Result{State: st}, err
	}

	return Result{State: st, Cursor: s.saveCursor(ctx, st, token)}, nil
}

// saveCursor stores the artifacts for the next page. Cursors are an
// optimization: a failed write is logged and the page is still returned.
// A resumed cursor that reached the last page is dropped.
func (s *Service) saveCursor(ctx context.Context, st *state.QueryState, token string) string {
	if s.conts == nil {
		return ""
	}
	if hasNext, _ := st.HasNextPage(); !hasNext {
		if token != "" {
			if err := s.conts.Delete(ctx, token); err != nil {
				s.log(ctx).Warn("Failed to drop exhausted search cursor", zap.Error(err))
			}
		}
		return ""
	}

	c := continuation.Continuation{Query: st.Query(), Mode: st.Mode()}
	if d, ok := st.Descriptor(); ok {
		c.Descriptor = d
	}
	if vec, ok := st.Embedding(); ok {
		c.Embedding = vec
	}

	saved, err := s.conts.Save(ctx, token, c)
	if err != nil {
		s.log(ctx).Warn("Failed to save search cursor", zap.Error(err))
		return ""
	}
	return saved
}

func (s *Service) finish(ctx context.Context, a attempt, res Result, err error, start time.Time) {
	outcome := Outcome(res.State, err)
	metrics.SearchOutcomesTotal.WithLabelValues(outcome).Inc()

	latency := s.now().Sub(start)
	e := event.Search{
		Query:     a.query,
		Mode:      string(a.mode),
		Outcome:   outcome,
		Page:      a.page,
		PageSize:  a.pageSize,
		LatencyMs: latency.Milliseconds(),
		At:        start.UTC(),
	}
	if st := res.State; st != nil {
		e.Query = st.Query()
		e.Mode = string(st.Mode())
		e.Results = len(st.Result())
		e.HasNextPage, _ = st.HasNextPage()
	}

	l := s.log(ctx)
	switch outcome {
	case metrics.OutcomeInternalError:
		l.Error("Search failed",
			zap.String("query", e.Query),
			zap.Int("page", e.Page),
			zap.Int("page_size", e.PageSize),
			zap.Error(err),
		)
	case metrics.OutcomeRejected:
		l.Info("Search rejected", zap.String("query", e.Query))
	case metrics.OutcomeStructured, metrics.OutcomeVector:
		l.Debug("Search completed",
			zap.String("outcome", outcome),
			zap.Int("results", e.Results),
			zap.Bool("has_next_page", e.HasNextPage),
			zap.Duration("latency", latency),
		)
	default:
		l.Warn("Search failed", zap.String("outcome", outcome), zap.Error(err))
	}

	if s.events != nil {
		s.events.Publish(ctx, e)
	}
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

// Outcome classifies a finished search for metrics and events.
func Outcome(st *state.QueryState, err error) string {
	switch {
	case err == nil && st != nil && st.Phase() == state.Rejected:
		return metrics.OutcomeRejected
	case err == nil && st != nil && st.Phase() == state.VectorExecuted:
		return metrics.OutcomeVector
	case err == nil && st != nil && st.Phase() == state.StructuredExecuted:
		return metrics.OutcomeStructured
	case errors.Is(err, domain.ErrEmptyQuery):
		return metrics.OutcomeEmptyQuery
	case errors.Is(err, domain.ErrInvalidRequest):
		return metrics.OutcomeInvalidRequest
	case errors.Is(err, domain.ErrMalformedOutput), errors.Is(err, domain.ErrInvalidDescriptor):
		return metrics.OutcomeUnprocessable
	case errors.Is(err, domain.ErrContinuationNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrDatabase):
		return metrics.OutcomeDatabaseError
	case errors.Is(err, domain.ErrEmbeddingProviderError), errors.Is(err, domain.ErrTextGenerationError):
		return metrics.OutcomeProviderError
	default:
		return metrics.OutcomeInternalError
	}
}
