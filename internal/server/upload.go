package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/desertthunder/driverelay/internal/shared"
)

// Upload accepts one multipart file, registers an upload session, and
// detaches a supervisor goroutine to run the transfer.
//
// Fails with a client error before any session is created when no file was
// supplied or the drive remote is not configured.
func (s *Service) Upload(w http.ResponseWriter, r *http.Request) {
	if !s.remote.RemoteExists(r.Context()) {
		s.writeError(w, http.StatusBadRequest, shared.ErrRemoteNotConfigured.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, shared.ErrNoFile.Error())
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.writeError(w, http.StatusBadRequest, shared.ErrNoFile.Error())
		return
	}

	filename := shared.SanitizeFilename(header.Filename)
	localPath := filepath.Join(s.cfg.Uploads.Dir, filename)

	if err := s.saveUpload(file, localPath); err != nil {
		s.logger.Error("failed to store upload", "filename", filename, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	destFolder := s.cfg.DestFolder()
	destObject := destFolder + "/" + filename

	sess := s.registry.Create(localPath, filename, destFolder, destObject)
	s.logger.Info("upload session created", "upload_id", sess.ID, "filename", filename)

	// Detached on purpose: a client closing the stream must not stop the transfer.
	go s.runner.Run(context.Background(), sess)

	s.writeJSON(w, http.StatusOK, map[string]string{
		"upload_id":        sess.ID,
		"filename":         filename,
		"dest_folder":      destFolder,
		"dest_object_path": destObject,
	})
}

func (s *Service) saveUpload(src io.Reader, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return err
	}

	dst, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(localPath)
		return err
	}

	return dst.Close()
}
