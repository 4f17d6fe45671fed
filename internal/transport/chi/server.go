package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/domain/route"
	logpkg "github.com/kailas-cloud/storesearch/internal/logger"
	healthuc "github.com/kailas-cloud/storesearch/internal/usecase/health"
	"github.com/kailas-cloud/storesearch/internal/usecase/navindex"
	"github.com/kailas-cloud/storesearch/internal/usecase/palette"
	"github.com/kailas-cloud/storesearch/internal/usecase/query"
	"github.com/kailas-cloud/storesearch/internal/usecase/tablefilter"
)

// maxFilterRows bounds POST /v1/filter.
const maxFilterRows = 5000

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the query pipeline, navigation search and palette sessions.
type Server struct {
	processor     *query.Processor
	catalog       *navindex.Catalog
	sessions      *palette.Manager
	matcher       *tablefilter.Matcher
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	processor *query.Processor,
	catalog *navindex.Catalog,
	sessions *palette.Manager,
	matcher *tablefilter.Matcher,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		processor: processor,
		catalog:   catalog,
		sessions:  sessions,
		matcher:   matcher,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, ErrorCodeSessionNotFound),
		sentinelHandler(domain.ErrSessionClosed, http.StatusConflict, ErrorCodeSessionClosed),
		sentinelHandler(domain.ErrUnknownAction, http.StatusBadRequest, ErrorCodeUnknownAction),
		sentinelHandler(domain.ErrNoSelection, http.StatusUnprocessableEntity, ErrorCodeNoSelection),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNetwork, http.StatusBadGateway, ErrorCodeSearchBackendError),
	}
	return s
}

// Handler mounts every route of s on r.
func Handler(s *Server, r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r gochi.Router) {
		r.Get("/query", s.ProcessQuery)
		r.Get("/nav", s.SearchNav)
		r.Post("/filter", s.FilterRows)

		r.Route("/palette/sessions", func(r gochi.Router) {
			r.Post("/", s.CreateSession)
			r.Route("/{id}", func(r gochi.Router) {
				r.Use(sessionLogContext)
				r.Get("/", s.GetSession)
				r.Delete("/", s.DeleteSession)
				r.Post("/open", s.OpenSession)
				r.Post("/query", s.SessionQuery)
				r.Post("/keys", s.SessionKey)
				r.Post("/items/{index}/activate", s.ActivateItem)
				r.Post("/items/{index}/actions/{action}", s.ItemAction)
				r.Post("/error/dismiss", s.DismissError)
			})
		})
	})
}

// ProcessQuery handles GET /v1/query.
func (s *Server) ProcessQuery(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		writeBindError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, queryToAPI(s.processor.Process(q)))
}

// SearchNav handles GET /v1/nav.
func (s *Server) SearchNav(w http.ResponseWriter, r *http.Request) {
	var q, role string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		writeBindError(w, err)
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "role", r.URL.Query(), &role); err != nil {
		writeBindError(w, err)
		return
	}

	pq := s.processor.Process(q)
	writeJSON(w, http.StatusOK, NavSearchResponse{
		Query: queryToAPI(pq),
		Role:  role,
		Items: navEntriesToAPI(s.catalog.ForRole(role).Search(pq)),
	})
}

// FilterRows handles POST /v1/filter.
func (s *Server) FilterRows(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Rows) > maxFilterRows {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "too many rows")
		return
	}

	pq := s.processor.Process(req.Query)
	rows := tablefilter.Filter(s.matcher, req.Rows, func(row string) string { return row }, pq)
	if rows == nil {
		rows = []string{}
	}
	writeJSON(w, http.StatusOK, FilterResponse{Query: queryToAPI(pq), Rows: rows})
}

// CreateSession handles POST /v1/palette/sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sess, err := s.sessions.Create(r.Context(), req.User, req.Role)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshotToAPI(sess.ID(), sess.Snapshot()))
}

// GetSession handles GET /v1/palette/sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshotToAPI(sess.ID(), sess.Snapshot()))
}

// DeleteSession handles DELETE /v1/palette/sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Delete(id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OpenSession handles POST /v1/palette/sessions/{id}/open.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshotToAPI(sess.ID(), sess.Open(r.Context())))
}

// SessionQuery handles POST /v1/palette/sessions/{id}/query.
func (s *Server) SessionQuery(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	snap, err := sess.Keystroke(req.Q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotToAPI(sess.ID(), snap))
}

// SessionKey handles POST /v1/palette/sessions/{id}/keys.
func (s *Server) SessionKey(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	snap, act, err := sess.HandleKey(r.Context(), req.Key)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	resp := KeyResponse{Snapshot: snapshotToAPI(sess.ID(), snap)}
	if act != nil {
		a := activationToAPI(*act)
		resp.Activation = &a
	}
	writeJSON(w, http.StatusOK, resp)
}

// ActivateItem handles POST /v1/palette/sessions/{id}/items/{index}/activate.
func (s *Server) ActivateItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	index, ok := itemIndex(w, r)
	if !ok {
		return
	}

	act, err := sess.Activate(r.Context(), index)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activationToAPI(act))
}

// ItemAction handles POST /v1/palette/sessions/{id}/items/{index}/actions/{action}.
func (s *Server) ItemAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	index, ok := itemIndex(w, r)
	if !ok {
		return
	}
	var action string
	if err := runtime.BindStyledParameterWithOptions("simple", "action", gochi.URLParam(r, "action"), &action,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true}); err != nil {
		writeBindError(w, err)
		return
	}

	act, err := sess.QuickAction(r.Context(), index, route.Action(action))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activationToAPI(act))
}

// DismissError handles POST /v1/palette/sessions/{id}/error/dismiss.
func (s *Server) DismissError(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshotToAPI(sess.ID(), sess.DismissError()))
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
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// sessionLogContext tags the request logger with the palette session id.
func sessionLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logpkg.With(r.Context(), zap.String("session", gochi.URLParam(r, "id")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*palette.Session, bool) {
	id, ok := sessionID(w, r)
	if !ok {
		return nil, false
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return nil, false
	}
	return sess, true
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	if err := runtime.BindStyledParameterWithOptions("simple", "id", gochi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true}); err != nil {
		writeBindError(w, err)
		return "", false
	}
	return id, true
}

func itemIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	var index int
	if err := runtime.BindStyledParameterWithOptions("simple", "index", gochi.URLParam(r, "index"), &index,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true}); err != nil {
		writeBindError(w, err)
		return 0, false
	}
	return index, true
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

func writeBindError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request: "+err.Error())
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrNetwork) {
		return domain.UserMessage(err)
	}
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrSessionClosed,
		domain.ErrUnknownAction,
		domain.ErrNoSelection,
		domain.ErrInvalidQuery,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
