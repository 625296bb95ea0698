// package supervisor drives one external rclone transfer per upload session.
//
// A supervisor goroutine is detached from the submitting request: it stats
// the source file, launches the copy subprocess, relays its JSON diagnostic
// stream into the session's event queue, and pushes exactly one terminal
// event sequence when the transfer ends. A client disconnecting from the
// progress stream never stops the transfer.
package supervisor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/driverelay/internal/events"
	"github.com/desertthunder/driverelay/internal/history"
	"github.com/desertthunder/driverelay/internal/rclone"
	"github.com/desertthunder/driverelay/internal/session"
	"github.com/desertthunder/driverelay/internal/shared"
)

// maxLogLine bounds a single diagnostic line; rclone stats lines stay well
// under this.
const maxLogLine = 1024 * 1024

// Supervisor runs external transfers for upload sessions.
type Supervisor struct {
	cfg     *shared.Config
	client  *rclone.Client
	history *history.Store
	logger  *log.Logger
}

// New creates a supervisor. The history store may be nil, in which case no
// upload records are kept.
func New(cfg *shared.Config, client *rclone.Client, store *history.Store, logger *log.Logger) *Supervisor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Supervisor{cfg: cfg, client: client, history: store, logger: logger}
}

// Run drives one transfer end to end and never returns an error: every
// failure is reported through the session's event queue instead. Intended to
// be called on its own goroutine.
func (s *Supervisor) Run(ctx context.Context, sess *session.Session) {
	logger := shared.WithLogger(s.logger, "upload_id", sess.ID, "filename", sess.Filename)
	q := sess.Queue()

	info, err := os.Stat(sess.SourcePath)
	if err != nil {
		logger.Error("source file not readable", "error", err)
		q.Push(events.Error("source file not readable"))
		s.finish(ctx, sess.ID, history.StatusFailed, "", "")
		return
	}

	total := info.Size()
	sess.SetTotalBytes(total)
	s.record(ctx, sess, total)

	q.Push(events.Start(sess.Filename, total))

	cmd := s.client.CopyCommand(ctx, sess.SourcePath, sess.DestObject)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		logger.Error("failed to open diagnostic pipe", "error", err)
		q.Push(events.Error("failed to start transfer"))
		s.finish(ctx, sess.ID, history.StatusFailed, "", "")
		return
	}

	if err := cmd.Start(); err != nil {
		logger.Error("failed to launch transfer tool", "error", err)
		q.Push(events.Error("failed to start transfer"))
		s.finish(ctx, sess.ID, history.StatusFailed, "", "")
		return
	}

	logger.Info("transfer started", "total_bytes", total, "dest", sess.DestObject)
	s.relay(stderr, sess)

	if err := cmd.Wait(); err != nil {
		logger.Error("transfer tool exited with failure", "error", err)
		q.Push(events.Error(fmt.Sprintf("%v: %v", shared.ErrTransferFailed, err)))
		s.finish(ctx, sess.ID, history.StatusFailed, "", "")
		return
	}

	fileID, viewLink := s.client.LookupFileID(ctx, sess.DestFolder, sess.Filename)

	if s.cfg.Rclone.DeleteLocal {
		if err := os.Remove(sess.SourcePath); err != nil {
			logger.Warn("failed to delete local source", "error", err)
		}
	}

	s.finish(ctx, sess.ID, history.StatusDone, fileID, viewLink)
	logger.Info("transfer complete", "file_id", fileID)

	q.Push(events.Done(fileID, viewLink))
	q.Push(events.Close())
}

// relay reads the diagnostic stream line by line until end-of-stream,
// classifying each line and pushing the resulting events. Malformed lines
// are discarded.
func (s *Supervisor) relay(r io.Reader, sess *session.Session) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLine)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		for _, e := range rclone.Classify(line, sess.Filename, sess.TotalBytes()) {
			sess.Queue().Push(e)
		}
	}

	if err := scanner.Err(); err != nil {
		s.logger.Warn("diagnostic stream read failed", "upload_id", sess.ID, "error", err)
	}
}

func (s *Supervisor) record(ctx context.Context, sess *session.Session, total int64) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, sess.ID, sess.Filename, sess.DestObject, total); err != nil {
		s.logger.Warn("failed to record upload", "upload_id", sess.ID, "error", err)
	}
}

func (s *Supervisor) finish(ctx context.Context, id, status, fileID, viewLink string) {
	if s.history == nil {
		return
	}
	if err := s.history.Finish(ctx, id, status, fileID, viewLink); err != nil {
		s.logger.Warn("failed to finish upload record", "upload_id", id, "error", err)
	}
}
