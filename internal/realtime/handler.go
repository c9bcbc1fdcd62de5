package realtime

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskflow-api/internal/api/middleware"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
)

// TokenQueryParam carries the access token for clients that cannot set
// headers on the upgrade request.
const TokenQueryParam = "token"

// Handler upgrades GET /ws requests to websocket sessions on a Hub.
type Handler struct {
	hub      *Hub
	jwt      auth.JWTService
	cfg      config.RealtimeConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a websocket handler. jwtService may be nil only when
// authentication is not required.
func NewHandler(hub *Hub, jwtService auth.JWTService, cfg config.RealtimeConfig, logger *slog.Logger) (*Handler, error) {
	if hub == nil {
		return nil, errors.New("hub cannot be nil")
	}
	if cfg.RequireAuth && jwtService == nil {
		return nil, errors.New("jwt service is required when realtime auth is enabled")
	}
	if cfg.SendBuffer <= 0 {
		return nil, errors.New("send buffer must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		hub:    hub,
		jwt:    jwtService,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "realtime_handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h, nil
}

// checkOrigin accepts requests without an Origin header, any origin when
// "*" is configured, listed origins, and otherwise same-origin requests.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	if len(h.cfg.AllowedOrigins) > 0 {
		return false
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// authenticate resolves the connecting user. With auth disabled an absent
// or invalid token yields uuid.Nil rather than an error.
func (h *Handler) authenticate(r *http.Request) (uuid.UUID, error) {
	token, ok := middleware.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		token = r.URL.Query().Get(TokenQueryParam)
	}

	if token == "" || h.jwt == nil {
		if h.cfg.RequireAuth {
			return uuid.Nil, auth.ErrMissingToken
		}
		return uuid.Nil, nil
	}

	claims, err := h.jwt.ValidateToken(r.Context(), token)
	if err != nil {
		if h.cfg.RequireAuth {
			return uuid.Nil, err
		}
		return uuid.Nil, nil
	}
	return claims.UserID, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, err := h.authenticate(r)
	if err != nil {
		log.Debug("websocket authentication failed", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		log.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	s := newSession(h.hub, conn, userID, h.cfg.SendBuffer, h.logger)
	if !h.hub.Register(s) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
		_ = conn.Close()
		return
	}

	log.Info("websocket session opened",
		slog.String("session_id", s.ID.String()),
		slog.String("user_id", userID.String()))

	go s.writePump()
	go s.readPump()
}
