package server

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/desertthunder/driverelay/internal/events"
	"github.com/desertthunder/driverelay/internal/session"
	"github.com/desertthunder/driverelay/internal/shared"
	"golang.org/x/oauth2"
)

// fakeRemote is a test double for [RemoteClient].
type fakeRemote struct {
	exists       bool
	provisionErr error

	mu          sync.Mutex
	provisioned *oauth2.Token
}

func (f *fakeRemote) RemoteExists(ctx context.Context) bool { return f.exists }

func (f *fakeRemote) CreateRemoteFromToken(ctx context.Context, token *oauth2.Token, clientID, clientSecret string) error {
	f.mu.Lock()
	f.provisioned = token
	f.mu.Unlock()
	return f.provisionErr
}

// fakeRunner is a test double for [TransferRunner] that pushes a scripted
// event sequence into the session queue.
type fakeRunner struct {
	script []events.Event

	mu   sync.Mutex
	runs []*session.Session
}

func (f *fakeRunner) Run(ctx context.Context, sess *session.Session) {
	f.mu.Lock()
	f.runs = append(f.runs, sess)
	f.mu.Unlock()

	for _, e := range f.script {
		sess.Queue().Push(e)
	}
}

func (f *fakeRunner) ranOnce() (*session.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.runs) != 1 {
		return nil, false
	}
	return f.runs[0], true
}

func newTestService(uploadsDir string, remote *fakeRemote, runner *fakeRunner) *Service {
	cfg := shared.DefaultConfig()
	cfg.Uploads.Dir = uploadsDir

	logger := shared.NewLogger(io.Discard)

	return NewService(ServiceOpts{
		Config: cfg,
		Remote: remote,
		Runner: runner,
		Logger: logger,
	})
}

func newTestRouter(svc *Service) http.Handler {
	router := NewBasicRouter()
	svc.Register(router)
	return router
}
