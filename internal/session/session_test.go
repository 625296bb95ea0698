package session

import (
	"sync"
	"testing"
	"time"
)

func TestRegistry(t *testing.T) {
	t.Run("create and get", func(t *testing.T) {
		r := NewRegistry()
		sess := r.Create("/tmp/a.bin", "a.bin", "gdrive:AutoUploads", "gdrive:AutoUploads/a.bin")

		if sess.ID == "" {
			t.Fatal("expected a session id")
		}

		got, ok := r.Get(sess.ID)
		if !ok {
			t.Fatal("session not retrievable after create")
		}
		if got.Filename != "a.bin" || got.DestObject != "gdrive:AutoUploads/a.bin" {
			t.Errorf("unexpected session fields: %+v", got)
		}
		if got.Queue() == nil {
			t.Error("expected an owned event queue")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		r := NewRegistry()
		if _, ok := r.Get("nope"); ok {
			t.Error("expected lookup miss")
		}
	})

	t.Run("concurrent creates yield distinct ids", func(t *testing.T) {
		r := NewRegistry()
		const n = 100

		ids := make(chan string, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ids <- r.Create("/tmp/f", "f", "d:", "d:/f").ID
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[string]bool)
		for id := range ids {
			if seen[id] {
				t.Fatalf("duplicate session id %s", id)
			}
			seen[id] = true
		}

		if r.Len() != n {
			t.Errorf("expected %d sessions, got %d", n, r.Len())
		}
	})

	t.Run("remove", func(t *testing.T) {
		r := NewRegistry()
		sess := r.Create("/tmp/a", "a", "d:", "d:/a")
		r.Remove(sess.ID)

		if _, ok := r.Get(sess.ID); ok {
			t.Error("session should be gone after remove")
		}
	})

	t.Run("reap old sessions", func(t *testing.T) {
		r := NewRegistry()
		old := r.Create("/tmp/a", "a", "d:", "d:/a")
		old.CreatedAt = time.Now().Add(-2 * time.Hour)
		fresh := r.Create("/tmp/b", "b", "d:", "d:/b")

		removed := r.Reap(time.Now().Add(-time.Hour))
		if removed != 1 {
			t.Fatalf("expected 1 reaped session, got %d", removed)
		}

		if _, ok := r.Get(old.ID); ok {
			t.Error("old session should be reaped")
		}
		if _, ok := r.Get(fresh.ID); !ok {
			t.Error("fresh session should survive the reaper")
		}
	})
}

func TestTotalBytes(t *testing.T) {
	r := NewRegistry()
	sess := r.Create("/tmp/a", "a", "d:", "d:/a")

	if sess.TotalBytes() != 0 {
		t.Errorf("expected zero total before supervisor sets it, got %d", sess.TotalBytes())
	}

	done := make(chan struct{})
	go func() {
		sess.SetTotalBytes(4096)
		close(done)
	}()
	<-done

	if got, ok := r.Get(sess.ID); !ok || got.TotalBytes() != 4096 {
		t.Errorf("expected total 4096 visible through registry, got %d", got.TotalBytes())
	}
}
