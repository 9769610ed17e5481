package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	accountapp "rfportal/internal/app/account"
	authapp "rfportal/internal/app/auth"
	charapp "rfportal/internal/app/character"
)

// Pinger reports database reachability for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	logger         zerolog.Logger
	auth           *authapp.Service
	sessions       *authapp.Sessions
	accounts       *accountapp.Service
	characters     *charapp.Service
	db             Pinger
	corsOrigin     string
	maxBodySize    int64
	requestTimeout time.Duration
	requireSession bool
}

// NewHandler builds the HTTP surface. With requireSession set, account-info,
// change-pin and change-password only act on the account named by the bearer
// token issued at login.
func NewHandler(logger zerolog.Logger, auth *authapp.Service, accounts *accountapp.Service, characters *charapp.Service, db Pinger, corsOrigin string, maxBodySize int64, requestTimeout time.Duration, requireSession bool) *Handler {
	return &Handler{
		logger:         logger,
		auth:           auth,
		sessions:       auth.Sessions(),
		accounts:       accounts,
		characters:     characters,
		db:             db,
		corsOrigin:     corsOrigin,
		maxBodySize:    maxBodySize,
		requestTimeout: requestTimeout,
		requireSession: requireSession,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.recoverer)
	r.Use(h.accessLog)
	if h.requestTimeout > 0 {
		r.Use(middleware.Timeout(h.requestTimeout))
	}
	r.Use(h.cors)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	r.Get("/healthz", h.health)
	r.Get("/readyz", h.ready)

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", h.register)
		api.Post("/auth/login", h.login)
		api.Get("/character-info/{name}", h.characterInfo)
		api.Post("/character-search", h.characterSearch)
		api.Get("/search/{name}", h.search)
		api.Post("/auth/change-pin", h.changePin)
		api.Post("/auth/change-password", h.changePassword)
		api.Get("/account-info/{username}", h.accountInfo)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, http.StatusOK, "ok", nil)
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("readiness ping failed")
			writeEnvelope(w, http.StatusServiceUnavailable, "Database unavailable", nil)
			return
		}
	}
	writeEnvelope(w, http.StatusOK, "ready", nil)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req authapp.RegisterInput
	if !h.decodeBody(w, r, &req) {
		return
	}
	req.OriginIP = clientIP(r)
	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Account registered successfully", res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	res, err := h.auth.Login(r.Context(), req.Username, req.Password, clientIP(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Login successful", res)
}

func (h *Handler) changePin(w http.ResponseWriter, r *http.Request) {
	var req authapp.ChangePinInput
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.authorize(r, req.Username); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.auth.ChangePin(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "PIN changed successfully", nil)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req authapp.ChangePasswordInput
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.authorize(r, req.Username); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.auth.ChangePassword(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Password changed successfully", nil)
}

func (h *Handler) accountInfo(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.authorize(r, username); err != nil {
		h.writeError(w, r, err)
		return
	}
	ov, err := h.accounts.Overview(r.Context(), username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Account information retrieved successfully", ov)
}

func (h *Handler) characterInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.characters.Info(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Character information retrieved successfully", info)
}

func (h *Handler) characterSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CharacterName string `json:"characterName"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	res, err := h.characters.Search(r.Context(), req.CharacterName)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Character data retrieved successfully", res)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	rec, err := h.characters.Lookup(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, "Character found", rec)
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return false
	}
	return true
}
