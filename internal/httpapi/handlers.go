package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/rink-sequences/internal/dataapi"
	"github.com/DoyleJ11/rink-sequences/internal/engine"
	"github.com/DoyleJ11/rink-sequences/internal/graph"
	"github.com/DoyleJ11/rink-sequences/internal/hub"
	"github.com/DoyleJ11/rink-sequences/internal/render"
	"github.com/DoyleJ11/rink-sequences/internal/scale"
	"github.com/DoyleJ11/rink-sequences/internal/session"
	"github.com/DoyleJ11/rink-sequences/internal/store"
	"github.com/DoyleJ11/rink-sequences/internal/types"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoHistory       = errors.New("history is not configured")
)

// History reads the recorded transitions of a session.
type History interface {
	List(ctx context.Context, sessionID string) ([]store.TransitionRecord, error)
}

type Handlers struct {
	hub     *hub.Hub
	history History
	logger  *zap.Logger
}

func NewHandlers(h *hub.Hub, history History, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{hub: h, history: history, logger: logger.Named("http")}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type SessionResponse struct {
	ID      string       `json:"id"`
	Version int          `json:"version"`
	View    *engine.View `json:"view,omitempty"`
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// CreateSession handles POST /sessions
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.hub.Create(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, SessionResponse{ID: s.ID()})
}

// GetSession handles GET /sessions/{id}
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	st, err := s.Status(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	v := engine.Derive(st.State)
	respondJSON(w, http.StatusOK, SessionResponse{ID: st.ID, Version: st.Version, View: &v})
}

// PostAction handles POST /sessions/{id}/actions
func (h *Handlers) PostAction(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var cm types.ClientMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&cm); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	msg, err := types.ToMsg(cm)
	if err != nil {
		h.respondError(w, err)
		return
	}

	snap, err := s.Do(r.Context(), msg)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, SessionResponse{ID: s.ID(), Version: snap.Version, View: &snap.View})
}

// RinkSVG handles GET /sessions/{id}/rink.svg. Optional width and height
// query parameters override the session viewport.
func (h *Handlers) RinkSVG(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	st, err := s.Status(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	v := engine.Derive(st.State)

	q := r.URL.Query()
	if q.Has("width") || q.Has("height") {
		width, err1 := strconv.ParseFloat(q.Get("width"), 64)
		height, err2 := strconv.ParseFloat(q.Get("height"), 64)
		if err1 != nil || err2 != nil {
			respondError(w, http.StatusBadRequest, "width and height must both be numbers")
			return
		}
		v.Scale = scale.Fit(width, height)
		v.Graph = graph.Build(v.Plays, v.Scale)
	}

	selected := -1
	if v.SelectedPlay != nil {
		selected = *v.SelectedPlay
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := render.RinkSVG(w, v.Graph, v.Scale, selected); err != nil {
		h.logger.Warn("writing svg", zap.Error(err))
	}
}

// History handles GET /sessions/{id}/history
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.respondError(w, ErrNoHistory)
		return
	}
	id := chi.URLParam(r, "id")
	recs, err := h.history.List(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

// Dashboard handles GET /. Without a known ?session it starts a new session
// and redirects to it.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("session"); id != "" {
		s, err := h.hub.Get(r.Context(), id)
		if err != nil {
			h.respondError(w, err)
			return
		}
		if s != nil {
			st, err := s.Status(r.Context())
			if err != nil {
				h.respondError(w, err)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if err := render.Page(w, st.ID, engine.Derive(st.State)); err != nil {
				h.logger.Error("rendering dashboard", zap.Error(err))
			}
			return
		}
	}

	s, err := h.hub.Create(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	http.Redirect(w, r, "/?session="+s.ID(), http.StatusSeeOther)
}

func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request, id string) (*session.Session, bool) {
	s, err := h.hub.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return nil, false
	}
	if s == nil {
		h.respondError(w, ErrSessionNotFound)
		return nil, false
	}
	return s, true
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrNoHistory):
		return http.StatusNotFound
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone
	case errors.Is(err, hub.ErrHubClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, types.ErrUnknownType),
		errors.Is(err, engine.ErrInvalidPeriod),
		errors.Is(err, engine.ErrUnknownGame),
		errors.Is(err, engine.ErrUnknownSequence),
		errors.Is(err, engine.ErrPlayOutOfRange),
		errors.Is(err, engine.ErrEmptyFilter),
		errors.Is(err, engine.ErrUnsupportedMsg):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNavigationDisabled):
		return http.StatusConflict
	case errors.Is(err, dataapi.ErrTransport), errors.Is(err, dataapi.ErrDecode):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		h.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	respondError(w, status, err.Error())
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
