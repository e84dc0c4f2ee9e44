// Package api provides the HTTP API and middleware for the server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pingpanel/pingpanel/pkg/eventcategory"
	"github.com/pingpanel/pingpanel/pkg/protocol"
	"github.com/pingpanel/pingpanel/server/internal/auth"
	"github.com/pingpanel/pingpanel/server/internal/category"
	"github.com/pingpanel/pingpanel/server/internal/config"
	"github.com/pingpanel/pingpanel/server/internal/store"
)

// Server is the HTTP API server.
type Server struct {
	store         store.Store
	authProvider  auth.Provider
	loginProvider auth.LoginProvider
	categories    *category.Service
	logger        *slog.Logger
	mux           *chi.Mux
	metrics       *metrics
	startTime     time.Time
	maxBodyBytes  int64
	pricingURL    string
	loginRL       *rateLimiter
	rl            *rateLimiter
}

// NewServer creates a new API server. lp is nil when the auth provider does
// not support password login.
func NewServer(s store.Store, ap auth.Provider, lp auth.LoginProvider, cs *category.Service, cfg *config.Config, logger *slog.Logger) *Server {
	srv := &Server{
		store:         s,
		authProvider:  ap,
		loginProvider: lp,
		categories:    cs,
		logger:        logger.With("component", "api"),
		metrics:       newMetrics(),
		startTime:     time.Now(),
		maxBodyBytes:  cfg.Server.MaxBodyBytes,
		pricingURL:    cfg.Billing.PricingURL,
	}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)
	mux.Use(chimw.RealIP)
	mux.Use(srv.metrics.middleware)
	mux.Use(securityHeadersMiddleware)
	mux.Use(makeCORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check routes (unauthenticated)
	mux.Get(protocol.PathHealthz, srv.handleHealthz)
	mux.Get(protocol.PathReadyz, srv.handleReadyz)
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, srv.metrics.handler())
	}

	mux.Get(protocol.PathAuthConfig, srv.handleAuthConfig)
	mux.Get(protocol.PathCategoryOptions, srv.handleCategoryOptions)

	// Login route only registered when using builtin auth.
	if lp != nil {
		srv.loginRL = newRateLimiter(5, 10)
		mux.With(loginIPRateLimitMiddleware(srv.loginRL)).Post(protocol.PathLogin, srv.handleLogin)
	}

	srv.rl = newRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	mux.Group(func(r chi.Router) {
		r.Use(srv.authMiddleware)
		if lp == nil {
			r.Use(srv.ensureUserMiddleware)
		}
		r.Use(rateLimitMiddleware(srv.rl))

		r.Get(protocol.PathMe, srv.handleGetMe)
		r.Get(protocol.PathUsage, srv.handleUsage)
		r.Get(protocol.PathCategories, srv.handleListCategories)
		r.Post(protocol.PathCategories, srv.handleCreateCategory)
	})

	srv.mux = mux
	return srv
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// StartBackgroundTasks starts periodic cleanup tasks for rate limiters.
func (s *Server) StartBackgroundTasks(ctx context.Context) {
	if s.loginRL != nil {
		s.loginRL.StartCleanup(ctx, 5*time.Minute, 10*time.Minute)
	}
	if s.rl != nil {
		s.rl.StartCleanup(ctx, 5*time.Minute, 10*time.Minute)
	}
}

// --- Auth handlers ---

func (s *Server) handleAuthConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, protocol.AuthConfigResponse{Provider: s.authProvider.Name()})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	var req protocol.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Username) < 3 || len(req.Username) > 64 {
		writeError(w, http.StatusBadRequest, "Username must be 3-64 characters")
		return
	}

	token, err := s.loginProvider.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Error("login failed", "username", req.Username, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		s.audit(r.Context(), "login.failed", "", map[string]any{"username": req.Username})
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	user, err := s.store.GetUser(r.Context(), req.Username)
	if err != nil || user == nil {
		s.logger.Error("load user after login", "username", req.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.audit(r.Context(), "login.success", user.ID, nil)

	writeJSON(w, http.StatusOK, protocol.LoginResponse{
		Token: token,
		User: protocol.UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
			Plan:     user.Plan,
		},
	})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	identity := getIdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	info := protocol.UserInfo{
		ID:       identity.UserID,
		Username: identity.Username,
		Role:     identity.Role,
	}
	if user, err := s.store.GetUserByID(r.Context(), identity.UserID); err == nil && user != nil {
		info.Plan = user.Plan
	}
	writeJSON(w, http.StatusOK, info)
}

// --- Category handlers ---

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		s.failCreate(w, s.categories.Create(r.Context(), "", eventcategory.Input{}))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	var req protocol.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.observeCreate(category.KindInvalid.String())
		writeJSON(w, http.StatusUnprocessableEntity, protocol.MessageResponse{
			Message: "Invalid request body",
			Field:   "body",
		})
		return
	}

	err := s.categories.Create(r.Context(), userID, eventcategory.Input{
		Name:  req.Name,
		Color: req.Color,
		Emoji: req.Emoji,
	})
	if err != nil {
		s.failCreate(w, err)
		return
	}

	s.metrics.observeCreate("created")
	writeJSON(w, http.StatusCreated, protocol.MessageResponse{Message: category.MsgCreated})
}

func (s *Server) failCreate(w http.ResponseWriter, err error) {
	var ce *category.Error
	if errors.As(err, &ce) {
		s.metrics.observeCreate(ce.Kind.String())
	} else {
		s.metrics.observeCreate("error")
	}
	writeCategoryError(w, err)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeCategoryError(w, err)
		return
	}

	out := protocol.CategoryList{Categories: make([]protocol.Category, 0, len(cats))}
	for _, c := range cats {
		out.Categories = append(out.Categories, protocol.Category{
			ID:        c.ID,
			Name:      c.Name,
			Color:     eventcategory.FormatColor(c.Color),
			Emoji:     c.Emoji,
			CreatedAt: c.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	u, err := s.categories.Usage(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeCategoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.UsageResponse{
		Plan:            string(u.Plan),
		CategoriesUsed:  u.Used,
		CategoriesLimit: u.Limit,
		PricingURL:      s.pricingURL,
	})
}

func (s *Server) handleCategoryOptions(w http.ResponseWriter, r *http.Request) {
	out := protocol.OptionsResponse{
		Colors: make([]protocol.ColorOption, 0, len(eventcategory.ColorOptions)),
		Emojis: make([]protocol.EmojiOption, 0, len(eventcategory.EmojiOptions)),
	}
	for _, c := range eventcategory.ColorOptions {
		out.Colors = append(out.Colors, protocol.ColorOption{Hex: c.Hex, Label: c.Label})
	}
	for _, e := range eventcategory.EmojiOptions {
		out.Emojis = append(out.Emojis, protocol.EmojiOption{Emoji: e.Emoji, Label: e.Label})
	}
	writeJSON(w, http.StatusOK, out)
}

// --- Health ---

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.startTime).Truncate(time.Second).String(),
	})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// --- Helpers ---

func (s *Server) audit(ctx context.Context, action, userID string, detail map[string]any) {
	var raw json.RawMessage
	if detail != nil {
		b, err := json.Marshal(detail)
		if err != nil {
			s.logger.Warn("encode audit detail", "action", action, "error", err)
		}
		raw = b
	}
	if err := s.store.LogAuditEvent(ctx, &store.AuditEvent{
		ID:        uuid.New().String(),
		Action:    action,
		UserID:    userID,
		Detail:    raw,
		CreatedAt: time.Now(),
	}); err != nil {
		s.logger.Warn("failed to log audit event", "action", action, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, protocol.MessageResponse{Message: message})
}

// writeCategoryError renders a category service failure with its status.
func writeCategoryError(w http.ResponseWriter, err error) {
	var ce *category.Error
	if !errors.As(err, &ce) {
		writeError(w, http.StatusInternalServerError, category.MsgInternal)
		return
	}
	writeJSON(w, ce.StatusCode(), protocol.MessageResponse{Message: ce.Message, Field: ce.Field})
}
