package rclone

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/driverelay/internal/shared"
	"golang.org/x/oauth2"
)

// writeStub writes a shell script standing in for the rclone binary.
func writeStub(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub binaries require a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "rclone")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write stub: %v", err)
	}
	return path
}

func testConfig(bin string) shared.RcloneConfig {
	return shared.RcloneConfig{
		Bin:        bin,
		ConfigPath: "/tmp/rclone.conf",
		RemoteName: "gdrive",
		DestPath:   "AutoUploads",
		Transfers:  "4",
		Checkers:   "8",
		ChunkSize:  "64M",
	}
}

func TestRemoteExists(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		bin := writeStub(t, `echo "gdrive:"`)
		c := NewClient(testConfig(bin), nil)

		if !c.RemoteExists(context.Background()) {
			t.Error("expected remote to exist")
		}
	})

	t.Run("other remotes only", func(t *testing.T) {
		bin := writeStub(t, `echo "s3backup:"`)
		c := NewClient(testConfig(bin), nil)

		if c.RemoteExists(context.Background()) {
			t.Error("expected remote to be missing")
		}
	})

	t.Run("binary failure", func(t *testing.T) {
		bin := writeStub(t, `exit 1`)
		c := NewClient(testConfig(bin), nil)

		if c.RemoteExists(context.Background()) {
			t.Error("expected false when listremotes fails")
		}
	})
}

func TestLookupFileID(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		bin := writeStub(t, `echo '[{"Name":"a.bin","Path":"a.bin","ID":"abc123"},{"Name":"b.bin","ID":"def"}]'`)
		c := NewClient(testConfig(bin), nil)

		id, link := c.LookupFileID(context.Background(), "gdrive:AutoUploads", "a.bin")
		if id != "abc123" {
			t.Errorf("expected id abc123, got %q", id)
		}
		if link != "https://drive.google.com/file/d/abc123/view?usp=drivesdk" {
			t.Errorf("unexpected link %q", link)
		}
	})

	t.Run("match by path when name empty", func(t *testing.T) {
		bin := writeStub(t, `echo '[{"Path":"a.bin","ID":"abc123"}]'`)
		c := NewClient(testConfig(bin), nil)

		if id, _ := c.LookupFileID(context.Background(), "gdrive:AutoUploads", "a.bin"); id != "abc123" {
			t.Errorf("expected id abc123, got %q", id)
		}
	})

	t.Run("no match", func(t *testing.T) {
		bin := writeStub(t, `echo '[]'`)
		c := NewClient(testConfig(bin), nil)

		if id, link := c.LookupFileID(context.Background(), "gdrive:AutoUploads", "a.bin"); id != "" || link != "" {
			t.Errorf("expected empty results, got %q %q", id, link)
		}
	})

	t.Run("lookup failure swallowed", func(t *testing.T) {
		bin := writeStub(t, `exit 3`)
		c := NewClient(testConfig(bin), nil)

		if id, link := c.LookupFileID(context.Background(), "gdrive:AutoUploads", "a.bin"); id != "" || link != "" {
			t.Errorf("expected empty results on failure, got %q %q", id, link)
		}
	})

	t.Run("garbage output swallowed", func(t *testing.T) {
		bin := writeStub(t, `echo 'not json'`)
		c := NewClient(testConfig(bin), nil)

		if id, _ := c.LookupFileID(context.Background(), "gdrive:AutoUploads", "a.bin"); id != "" {
			t.Errorf("expected empty id, got %q", id)
		}
	})
}

func TestCopyCommand(t *testing.T) {
	c := NewClient(testConfig("rclone"), nil)
	cmd := c.CopyCommand(context.Background(), "/tmp/uploads/a.bin", "gdrive:AutoUploads/a.bin")

	joined := strings.Join(cmd.Args, " ")
	for _, want := range []string{
		"--config /tmp/rclone.conf",
		"copyto /tmp/uploads/a.bin gdrive:AutoUploads/a.bin",
		"--use-json-log",
		"--stats=1s",
		"--transfers 4",
		"--checkers 8",
		"--drive-chunk-size 64M",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("command missing %q: %s", want, joined)
		}
	}
}

func TestCreateRemoteFromToken(t *testing.T) {
	token := &oauth2.Token{
		AccessToken:  "at",
		RefreshToken: "rt",
		Expiry:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	t.Run("success", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "args.txt")
		bin := writeStub(t, `echo "$@" >> `+out+`
exit 0`)
		c := NewClient(testConfig(bin), nil)

		if err := c.CreateRemoteFromToken(context.Background(), token, "cid", "csecret"); err != nil {
			t.Fatalf("provisioning failed: %v", err)
		}

		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("stub not invoked: %v", err)
		}
		recorded := string(data)
		for _, want := range []string{"config create gdrive drive", "scope=drive.file", "client_id=cid", "client_secret=csecret", `"refresh_token":"rt"`, "2026-01-02T03:04:05Z"} {
			if !strings.Contains(recorded, want) {
				t.Errorf("create invocation missing %q:\n%s", want, recorded)
			}
		}
	})

	t.Run("failure surfaces error", func(t *testing.T) {
		bin := writeStub(t, `case "$3" in config) [ "$4" = create ] && exit 1 ;; esac
exit 0`)
		c := NewClient(testConfig(bin), nil)

		if err := c.CreateRemoteFromToken(context.Background(), token, "", ""); err == nil {
			t.Error("expected provisioning error")
		}
	})
}
