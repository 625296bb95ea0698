package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Frontend FrontendConfig `toml:"frontend"`
	OAuth    OAuthConfig    `toml:"oauth"`
	Rclone   RcloneConfig   `toml:"rclone"`
	Uploads  UploadsConfig  `toml:"uploads"`
	Database DatabaseConfig `toml:"database"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// FrontendConfig identifies the browser client origin the service serves.
type FrontendConfig struct {
	BaseURL string `toml:"base_url"`
}

// OAuthConfig contains the Google OAuth settings used to provision the
// drive remote from a user's credentials.
type OAuthConfig struct {
	RedirectURI       string `toml:"redirect_uri"`
	ClientSecretsFile string `toml:"client_secrets_file"`
}

// RcloneConfig describes the external rclone binary and the destination
// remote it copies uploads to.
type RcloneConfig struct {
	Bin         string `toml:"bin"`
	ConfigPath  string `toml:"config_path"`
	RemoteName  string `toml:"remote_name"`
	DestPath    string `toml:"dest_path"`
	Transfers   string `toml:"transfers"`
	Checkers    string `toml:"checkers"`
	ChunkSize   string `toml:"chunk_size"`
	DeleteLocal bool   `toml:"delete_local"`
}

// UploadsConfig contains local upload staging settings.
type UploadsConfig struct {
	Dir         string `toml:"dir"`
	MaxUploadMB int64  `toml:"max_upload_mb"`
}

// DatabaseConfig contains upload history database settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment variable overrides onto the configuration.
func (c *Config) ApplyEnv() {
	setString(&c.Server.Host, "HOST")
	setInt(&c.Server.Port, "PORT")
	setString(&c.Frontend.BaseURL, "FRONTEND_BASE_URL")
	setString(&c.OAuth.RedirectURI, "OAUTH_REDIRECT_URI")
	setString(&c.OAuth.ClientSecretsFile, "GOOGLE_CLIENT_SECRETS_FILE")
	setString(&c.Rclone.Bin, "RCLONE_BIN")
	setString(&c.Rclone.ConfigPath, "RCLONE_CONFIG_PATH")
	setString(&c.Rclone.RemoteName, "RCLONE_REMOTE_NAME")
	setString(&c.Rclone.DestPath, "RCLONE_DEST_PATH")
	setString(&c.Rclone.Transfers, "RCLONE_TRANSFERS")
	setString(&c.Rclone.Checkers, "RCLONE_CHECKERS")
	setString(&c.Rclone.ChunkSize, "RCLONE_DRIVE_CHUNK_SIZE")
	setString(&c.Uploads.Dir, "UPLOADS_DIR")
	setInt64(&c.Uploads.MaxUploadMB, "MAX_UPLOAD_MB")
	setString(&c.Database.Path, "DATABASE_PATH")

	if v := os.Getenv("RCLONE_DELETE_LOCAL"); v != "" {
		c.Rclone.DeleteLocal = v == "1" || v == "true"
	}
}

// DestFolder returns the remote destination folder in rclone remote:path notation.
func (c *Config) DestFolder() string {
	if c.Rclone.DestPath == "" {
		return c.Rclone.RemoteName + ":"
	}
	return c.Rclone.RemoteName + ":" + c.Rclone.DestPath
}

// MaxUploadBytes returns the configured upload size cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Uploads.MaxUploadMB * 1024 * 1024
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}
