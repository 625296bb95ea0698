// package rclone wraps the external rclone binary used to copy uploads to
// the configured drive remote.
//
// The binary is a black box: this package builds its invocations, checks
// remote configuration, provisions a remote from OAuth credentials, and
// resolves uploaded files to drive ids via lsjson.
package rclone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/driverelay/internal/shared"
	"golang.org/x/oauth2"
)

const viewLinkFormat = "https://drive.google.com/file/d/%s/view?usp=drivesdk"

// Client invokes the rclone binary configured in [shared.RcloneConfig].
type Client struct {
	cfg    shared.RcloneConfig
	logger *log.Logger
}

// NewClient creates a client for the configured rclone binary.
func NewClient(cfg shared.RcloneConfig, logger *log.Logger) *Client {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Client{cfg: cfg, logger: logger}
}

// baseArgs returns the arguments common to every invocation.
func (c *Client) baseArgs() []string {
	return []string{"--config", c.cfg.ConfigPath}
}

// RemoteExists reports whether the configured remote appears in listremotes.
func (c *Client) RemoteExists(ctx context.Context) bool {
	args := append(c.baseArgs(), "listremotes")
	out, err := exec.CommandContext(ctx, c.cfg.Bin, args...).Output()
	if err != nil {
		c.logger.Debug("listremotes failed", "error", err)
		return false
	}
	return strings.Contains(string(out), c.cfg.RemoteName+":")
}

// lsjsonEntry is the subset of rclone lsjson output this client reads.
type lsjsonEntry struct {
	Name string `json:"Name"`
	Path string `json:"Path"`
	ID   string `json:"ID"`
}

// LookupFileID lists the destination folder and resolves the uploaded file
// to a drive file id and a human-viewable link.
//
// Lookup failures are not fatal: both results are empty on any error or when
// no entry matches.
func (c *Client) LookupFileID(ctx context.Context, destFolder, filename string) (string, string) {
	args := append(c.baseArgs(), "lsjson", destFolder, "--files-only", "--max-depth", "1")
	out, err := exec.CommandContext(ctx, c.cfg.Bin, args...).Output()
	if err != nil {
		c.logger.Warn("lsjson lookup failed", "folder", destFolder, "error", err)
		return "", ""
	}

	var entries []lsjsonEntry
	if err := json.Unmarshal(out, &entries); err != nil {
		c.logger.Warn("lsjson output not parseable", "error", err)
		return "", ""
	}

	for _, entry := range entries {
		name := entry.Name
		if name == "" {
			name = entry.Path
		}
		if name == filename && entry.ID != "" {
			return entry.ID, fmt.Sprintf(viewLinkFormat, entry.ID)
		}
	}

	return "", ""
}

// CopyCommand builds the copyto invocation for one source file, with JSON
// logging and periodic statistics enabled on stderr.
func (c *Client) CopyCommand(ctx context.Context, sourcePath, destObject string) *exec.Cmd {
	args := append(c.baseArgs(),
		"copyto", sourcePath, destObject,
		"--use-json-log",
		"--progress",
		"--stats=1s",
		"--transfers", c.cfg.Transfers,
		"--checkers", c.cfg.Checkers,
		"--drive-chunk-size", c.cfg.ChunkSize,
	)
	return exec.CommandContext(ctx, c.cfg.Bin, args...)
}

// DeleteRemote removes the configured remote from the rclone config file.
// Errors are ignored so provisioning stays idempotent.
func (c *Client) DeleteRemote(ctx context.Context) {
	args := append(c.baseArgs(), "config", "delete", c.cfg.RemoteName)
	if err := exec.CommandContext(ctx, c.cfg.Bin, args...).Run(); err != nil {
		c.logger.Debug("config delete failed", "remote", c.cfg.RemoteName, "error", err)
	}
}

// CreateRemoteFromToken provisions the drive remote from an OAuth token.
//
// The client id and secret must match the OAuth app that issued the token or
// rclone's refresh requests will be rejected. Any remote with the same name
// is deleted first.
func (c *Client) CreateRemoteFromToken(ctx context.Context, token *oauth2.Token, clientID, clientSecret string) error {
	tokenJSON, err := json.Marshal(map[string]any{
		"access_token":  token.AccessToken,
		"token_type":    "Bearer",
		"refresh_token": token.RefreshToken,
		"expiry":        token.Expiry.UTC().Format("2006-01-02T15:04:05Z"),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRemoteProvision, err)
	}

	c.DeleteRemote(ctx)

	args := append(c.baseArgs(),
		"config", "create", c.cfg.RemoteName, "drive",
		"scope=drive.file",
		"token="+string(tokenJSON),
	)
	if clientID != "" {
		args = append(args, "client_id="+clientID)
	}
	if clientSecret != "" {
		args = append(args, "client_secret="+clientSecret)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.cfg.Bin, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v: %s", shared.ErrRemoteProvision, err, stderr.String())
	}

	c.logger.Info("drive remote provisioned", "remote", c.cfg.RemoteName)
	return nil
}
