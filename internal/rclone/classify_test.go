package rclone

import (
	"testing"

	"github.com/desertthunder/driverelay/internal/events"
)

func TestClassify(t *testing.T) {
	t.Run("stats line yields progress", func(t *testing.T) {
		line := []byte(`{"level":"info","msg":"","stats":{"bytes":250,"speed":128.5,"eta":3}}`)
		evs := Classify(line, "a.bin", 1000)

		if len(evs) != 1 {
			t.Fatalf("expected 1 event, got %d", len(evs))
		}
		e := evs[0]
		if e.Kind != events.KindProgress {
			t.Fatalf("expected progress, got %s", e.Kind)
		}
		if e.Bytes != 250 || e.Total != 1000 || e.Pct != 25.0 {
			t.Errorf("unexpected progress fields: %+v", e)
		}
		if e.Speed != 128.5 || e.Eta != 3 {
			t.Errorf("speed/eta not copied through: %+v", e)
		}
	})

	t.Run("null eta", func(t *testing.T) {
		line := []byte(`{"stats":{"bytes":10,"speed":0,"eta":null}}`)
		evs := Classify(line, "a.bin", 100)

		if len(evs) != 1 || evs[0].Eta != 0 {
			t.Errorf("expected progress with zero eta, got %+v", evs)
		}
	})

	t.Run("copied message for session file", func(t *testing.T) {
		line := []byte(`{"level":"info","msg":"Copied (new)","object":"a.bin"}`)
		evs := Classify(line, "a.bin", 1000)

		if len(evs) != 1 || evs[0].Kind != events.KindFileCopied {
			t.Fatalf("expected file_copied, got %+v", evs)
		}
		if evs[0].Filename != "a.bin" {
			t.Errorf("unexpected filename %q", evs[0].Filename)
		}
	})

	t.Run("copied message for other file ignored", func(t *testing.T) {
		line := []byte(`{"msg":"Copied (new)","object":"other.bin"}`)
		if evs := Classify(line, "a.bin", 1000); len(evs) != 0 {
			t.Errorf("expected no events, got %+v", evs)
		}
	})

	t.Run("stats and copied on one line", func(t *testing.T) {
		line := []byte(`{"msg":"Copied (new)","object":"a.bin","stats":{"bytes":1000,"speed":1,"eta":0}}`)
		evs := Classify(line, "a.bin", 1000)

		if len(evs) != 2 {
			t.Fatalf("expected 2 events, got %d", len(evs))
		}
		if evs[0].Kind != events.KindProgress || evs[1].Kind != events.KindFileCopied {
			t.Errorf("unexpected event kinds: %s, %s", evs[0].Kind, evs[1].Kind)
		}
	})

	t.Run("malformed json ignored", func(t *testing.T) {
		if evs := Classify([]byte("2024/01/01 transferring..."), "a.bin", 1000); evs != nil {
			t.Errorf("expected nil, got %+v", evs)
		}
	})

	t.Run("unrelated record ignored", func(t *testing.T) {
		if evs := Classify([]byte(`{"level":"debug","msg":"Waiting for checks"}`), "a.bin", 1000); len(evs) != 0 {
			t.Errorf("expected no events, got %+v", evs)
		}
	})

	t.Run("missing fields default to zero", func(t *testing.T) {
		evs := Classify([]byte(`{"stats":{}}`), "a.bin", 0)
		if len(evs) != 1 {
			t.Fatalf("expected 1 event, got %d", len(evs))
		}
		if evs[0].Bytes != 0 || evs[0].Pct != 0 {
			t.Errorf("expected zero defaults, got %+v", evs[0])
		}
	})
}
