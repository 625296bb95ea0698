package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/desertthunder/driverelay/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	userinfoURL     = "https://www.googleapis.com/oauth2/v2/userinfo"
	stateCookie     = "oauth_state"
	sessionCookie   = "relay_session"
	sessionLifetime = 7 * 24 * time.Hour
)

var oauthScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/drive.file",
}

// authSessions is an in-memory cookie-keyed store of logged-in users.
type authSessions struct {
	mu     sync.RWMutex
	emails map[string]string
}

func newAuthSessions() *authSessions {
	return &authSessions{emails: make(map[string]string)}
}

func (a *authSessions) put(email string) string {
	key := shared.GenerateID()
	a.mu.Lock()
	a.emails[key] = email
	a.mu.Unlock()
	return key
}

func (a *authSessions) get(key string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	email, ok := a.emails[key]
	return email, ok
}

func (a *authSessions) drop(key string) {
	a.mu.Lock()
	delete(a.emails, key)
	a.mu.Unlock()
}

// oauthConfig builds the Google OAuth2 config from the client secrets file.
func (s *Service) oauthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(s.cfg.OAuth.ClientSecretsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMissingConfig, err)
	}

	conf, err := google.ConfigFromJSON(data, oauthScopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	conf.RedirectURL = s.cfg.OAuth.RedirectURI
	return conf, nil
}

// AuthLogin redirects the browser to Google's consent screen.
func (s *Service) AuthLogin(w http.ResponseWriter, r *http.Request) {
	conf, err := s.oauthConfig()
	if err != nil {
		s.logger.Error("oauth config unavailable", "error", err)
		s.writeError(w, http.StatusInternalServerError, "oauth is not configured")
		return
	}

	state := shared.GenerateID()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)

	http.Redirect(w, r, authURL, http.StatusFound)
}

// AuthCallback completes the authorization code flow: it validates state,
// exchanges the code, resolves the user's email, and provisions the rclone
// drive remote from the returned token.
func (s *Service) AuthCallback(w http.ResponseWriter, r *http.Request) {
	stateC, err := r.Cookie(stateCookie)
	if err != nil || stateC.Value == "" {
		s.redirectAuthError(w, r, "missing_state")
		return
	}
	if r.URL.Query().Get("state") != stateC.Value {
		s.redirectAuthError(w, r, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		s.redirectAuthError(w, r, "missing_code")
		return
	}

	conf, err := s.oauthConfig()
	if err != nil {
		s.logger.Error("oauth config unavailable", "error", err)
		s.redirectAuthError(w, r, "oauth_not_configured")
		return
	}

	token, err := conf.Exchange(r.Context(), code)
	if err != nil {
		s.logger.Error("token exchange failed", "error", err)
		s.redirectAuthError(w, r, "token_exchange_failed")
		return
	}

	email, err := fetchUserEmail(r, conf, token)
	if err != nil {
		s.logger.Error("userinfo lookup failed", "error", err)
		s.redirectAuthError(w, r, "userinfo_failed")
		return
	}

	if err := s.remote.CreateRemoteFromToken(r.Context(), token, conf.ClientID, conf.ClientSecret); err != nil {
		s.logger.Error("remote provisioning failed", "error", err)
		s.redirectAuthError(w, r, "rclone_config_failed")
		return
	}

	key := s.auth.put(email)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    key,
		Path:     "/",
		MaxAge:   int(sessionLifetime / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info("user authenticated", "email", email)
	http.Redirect(w, r, s.cfg.Frontend.BaseURL+"/auth/success", http.StatusFound)
}

// AuthMe reports the logged-in user, if any.
func (s *Service) AuthMe(w http.ResponseWriter, r *http.Request) {
	var email string
	if c, err := r.Cookie(sessionCookie); err == nil {
		email, _ = s.auth.get(c.Value)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"logged_in": email != "",
		"email":     email,
	})
}

// Logout clears the auth session.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.auth.drop(c.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Service) redirectAuthError(w http.ResponseWriter, r *http.Request, reason string) {
	target := s.cfg.Frontend.BaseURL + "/?authError=" + url.QueryEscape(reason)
	http.Redirect(w, r, target, http.StatusFound)
}

// fetchUserEmail resolves the authenticated user's email via the userinfo endpoint.
func fetchUserEmail(r *http.Request, conf *oauth2.Config, token *oauth2.Token) (string, error) {
	client := conf.Client(r.Context(), token)
	resp, err := client.Get(userinfoURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: userinfo status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	return info.Email, nil
}
