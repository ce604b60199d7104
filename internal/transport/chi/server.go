package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesearch/internal/domain"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/mode"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/page"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/request"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/state"
	"github.com/kailas-cloud/gamesearch/internal/logger"
	healthuc "github.com/kailas-cloud/gamesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/gamesearch/internal/usecase/search"
)

const (
	maxBodyBytes = 1 << 20
)

// User-facing messages.
const (
	msgEmptyQuery    = "The search query was empty"
	msgUnprocessable = "The search query could not be processed"
	msgNotFound      = "The search cursor has expired"
	msgDatabase      = "Database error occurred"
	msgProvider      = "upstream provider error"
	msgInternal      = "An unexpected error occurred"
)

// Searcher runs one page of a search and records searches refused before
// a request could be built.
type Searcher interface {
	Search(ctx context.Context, req request.Request) (searchuc.Result, error)
	Refuse(ctx context.Context, query string, m mode.Mode, err error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the search API.
type Server struct {
	search          Searcher
	health          HealthChecker
	defaultPageSize int
	maxPageSize     int
	maxDepth        int
	logger          *zap.Logger
	errorHandlers   []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:          search,
		health:          health,
		defaultPageSize: page.DefaultSize,
		maxPageSize:     100,
		maxDepth:        page.DefaultMaxDepth,
		logger:          logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, ErrorCodeEmptyQuery, msgEmptyQuery),
		sentinelHandler(domain.ErrContinuationNotFound, http.StatusNotFound, ErrorCodeContinuationNotFound, msgNotFound),
		detailHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrMalformedOutput,
			http.StatusUnprocessableEntity, ErrorCodeUnprocessableQuery, msgUnprocessable),
		sentinelHandler(domain.ErrInvalidDescriptor,
			http.StatusUnprocessableEntity, ErrorCodeUnprocessableQuery, msgUnprocessable),
		sentinelHandler(domain.ErrDatabase, http.StatusInternalServerError, ErrorCodeDatabaseError, msgDatabase),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeProviderError, msgProvider),
		sentinelHandler(domain.ErrTextGenerationError, http.StatusBadGateway, ErrorCodeProviderError, msgProvider),
	}
	return s
}

// WithPageSizes sets the page_size used when the request omits it and the
// cap applied to larger values.
func (s *Server) WithPageSizes(defaultSize, maxSize int) *Server {
	if defaultSize > 0 {
		s.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	return s
}

// WithMaxDepth bounds how deep into the result list a page may reach.
func (s *Server) WithMaxDepth(depth int) *Server {
	if depth > 0 {
		s.maxDepth = depth
	}
	return s
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.search.Refuse(r.Context(), "", mode.Structured,
			fmt.Errorf("%w: decode body: %w", domain.ErrInvalidRequest, err))
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	searchReq, err := s.searchRequestFromDTO(req)
	if err != nil {
		s.search.Refuse(r.Context(), req.Query, mode.FromVectorFlag(req.UseVectorSearch), err)
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.search.Search(r.Context(), searchReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFromResult(res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    string(report.Status),
		Checks:    checks,
		Timestamp: report.CheckedAt,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) searchRequestFromDTO(req SearchRequest) (request.Request, error) {
	number, size := 0, s.defaultPageSize
	if req.Page != nil {
		if *req.Page <= 0 {
			return request.Request{}, fmt.Errorf("%w: page must be positive", domain.ErrInvalidRequest)
		}
		number = *req.Page
	}
	if req.PageSize != nil {
		if *req.PageSize <= 0 {
			return request.Request{}, fmt.Errorf("%w: page_size must be positive", domain.ErrInvalidRequest)
		}
		size = *req.PageSize
	}
	p, err := page.New(number, size, s.maxPageSize, s.maxDepth)
	if err != nil {
		return request.Request{}, err
	}

	var opts []request.Option
	if raw := bytes.TrimSpace(req.ProcessedOutput); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		opts = append(opts, request.WithDescriptor(raw))
	}
	if len(req.VectorEmbedding) > 0 {
		opts = append(opts, request.WithEmbedding(req.VectorEmbedding))
	}
	if req.Cursor != "" {
		opts = append(opts, request.WithCursor(req.Cursor))
	}

	r, err := request.New(req.Query, mode.FromVectorFlag(req.UseVectorSearch), p, opts...)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return r, nil
}

func searchResponseFromResult(res searchuc.Result) SearchResponse {
	st := res.State
	resp := SearchResponse{
		Query:           st.Query(),
		UseVectorSearch: st.Mode().UsesVector(),
		Page:            st.Page().Number(),
		PageSize:        st.Page().Size(),
		Error:           st.Error(),
		Cursor:          res.Cursor,
	}
	if st.Phase() == state.Rejected {
		return resp
	}

	resp.Result = st.Result()
	resp.HasNextPage, _ = st.HasNextPage()
	if d, ok := st.Descriptor(); ok {
		if raw, err := json.Marshal(d); err == nil {
			resp.ProcessedOutput = raw
		}
	}
	if vec, ok := st.Embedding(); ok {
		resp.VectorEmbedding = vec
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// detailHandler is a sentinelHandler that shows the error text, for errors
// built from caller input only.
func detailHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	l := logger.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			l.Warn("domain error", zap.Error(err))
			return
		}
	}
	l.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, msgInternal)
}
