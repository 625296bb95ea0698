package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed = fmt.Errorf("authentication failed")

	// Remote and transfer errors
	ErrRemoteNotConfigured = fmt.Errorf("drive remote is not configured")
	ErrRemoteProvision     = fmt.Errorf("remote provisioning failed")
	ErrTransferFailed      = fmt.Errorf("transfer failed")

	// Upload errors
	ErrNoFile          = fmt.Errorf("no file supplied")
	ErrSessionNotFound = fmt.Errorf("upload session not found")
)
