package app_test

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/immut/internal/app"
	"go.trai.ch/immut/internal/core/ports"
)

// fakeWatcher delivers events pushed by the test.
type fakeWatcher struct {
	started chan string
	events  chan ports.WatchEvent
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{
		started: make(chan string, 1),
		events:  make(chan ports.WatchEvent, 8),
	}
}

func (w *fakeWatcher) Start(_ context.Context, root string) error {
	w.started <- root
	return nil
}

func (w *fakeWatcher) Stop() error { return nil }

func (w *fakeWatcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for ev := range w.events {
			if !yield(ev) {
				return
			}
		}
	}
}

func TestApp_Watch(t *testing.T) {
	root := newProject(t)
	fw := newFakeWatcher()
	h := newApp(t, root, fw)
	h.app.WithDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- h.app.Watch(ctx, app.WatchOptions{})
	}()

	select {
	case got := <-fw.started:
		assert.Equal(t, root, got)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not start")
	}
	assert.NotContains(t, readFile(t, root, "shapes/point_immut.go"), "Label()")

	// Generated files are not declaration files and must not trigger a pass.
	fw.events <- ports.WatchEvent{Path: filepath.Join(root, "shapes/point_immut.go"), Operation: ports.OpWrite}

	writeFile(t, root, "shapes/point.immut.yaml", pointYAMLWithLabel)
	fw.events <- ports.WatchEvent{Path: filepath.Join(root, "shapes/point.immut.yaml"), Operation: ports.OpWrite}

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(root, "shapes/point_immut.go"))
		return err == nil && strings.Contains(string(data), "Label()")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	close(fw.events)
}
