package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/driverelay/internal/history"
	"github.com/desertthunder/driverelay/internal/session"
	"github.com/desertthunder/driverelay/internal/shared"
	"golang.org/x/oauth2"
)

// RemoteClient is the rclone surface the HTTP layer depends on.
type RemoteClient interface {
	RemoteExists(ctx context.Context) bool
	CreateRemoteFromToken(ctx context.Context, token *oauth2.Token, clientID, clientSecret string) error
}

// TransferRunner launches one supervised transfer for a session.
type TransferRunner interface {
	Run(ctx context.Context, sess *session.Session)
}

// Service holds the dependencies shared by all HTTP handlers.
type Service struct {
	cfg      *shared.Config
	registry *session.Registry
	remote   RemoteClient
	runner   TransferRunner
	history  *history.Store
	auth     *authSessions
	logger   *log.Logger
}

// ServiceOpts contains dependencies for creating a Service.
type ServiceOpts struct {
	Config   *shared.Config
	Registry *session.Registry
	Remote   RemoteClient
	Runner   TransferRunner
	History  *history.Store
	Logger   *log.Logger
}

// NewService creates the HTTP service. The history store may be nil.
func NewService(opts ServiceOpts) *Service {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Registry == nil {
		opts.Registry = session.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Service{
		cfg:      opts.Config,
		registry: opts.Registry,
		remote:   opts.Remote,
		runner:   opts.Runner,
		history:  opts.History,
		auth:     newAuthSessions(),
		logger:   opts.Logger,
	}
}

// Register wires every endpoint onto the router.
func (s *Service) Register(r Router) {
	r.Handle(http.MethodGet, "/health", http.HandlerFunc(s.Health))

	// Submissions are rate limited per client address; the streaming
	// endpoints hold one long request each and are left alone.
	r.Handle(http.MethodPost, "/api/upload", RateLimit(1, 5)(http.HandlerFunc(s.Upload)))
	r.Handle(http.MethodGet, "/api/upload/stream", http.HandlerFunc(s.Stream))
	r.Handle(http.MethodGet, "/api/upload/ws", http.HandlerFunc(s.StreamWS))

	r.Handle(http.MethodGet, "/api/auth/login", http.HandlerFunc(s.AuthLogin))
	r.Handle(http.MethodGet, "/api/auth/callback", http.HandlerFunc(s.AuthCallback))
	r.Handle(http.MethodGet, "/api/auth/me", http.HandlerFunc(s.AuthMe))
	r.Handle(http.MethodPost, "/api/logout", http.HandlerFunc(s.Logout))

	r.Handle(http.MethodGet, "/api/rclone/remote/status", http.HandlerFunc(s.RemoteStatus))
	r.Handle(http.MethodGet, "/api/history", http.HandlerFunc(s.History))
}

// Health reports service liveness.
func (s *Service) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// RemoteStatus reports whether the drive remote is provisioned.
func (s *Service) RemoteStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"configured": s.remote.RemoteExists(r.Context()),
		"remote":     s.cfg.Rclone.RemoteName,
	})
}

// History returns recent upload records, newest first.
func (s *Service) History(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeJSON(w, http.StatusOK, []any{})
		return
	}

	uploads, err := s.history.List(r.Context(), 50)
	if err != nil {
		s.logger.Error("failed to list upload history", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list uploads")
		return
	}

	s.writeJSON(w, http.StatusOK, uploads)
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Service) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
