package internal

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/lifenote/internal/client"
	"github.com/starford/lifenote/internal/docstore"
	"github.com/starford/lifenote/internal/noteservice"
	"github.com/starford/lifenote/internal/testutil"
)

func TestRunRequiresConfig(t *testing.T) {
	err := Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "config is required") {
		t.Fatalf("err = %v", err)
	}
}

func TestHTTPHandlerRoutes(t *testing.T) {
	svc := noteservice.NewService(testutil.TestDB(t), noteservice.WithLogger(testutil.DiscardLogger()))
	h := NewHTTPHandler(svc, func() int { return 2025 }, nil)

	for _, path := range []string{"/health/live", "/health/ready", "/api/topics", "/api/notes?year=2025"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
	}

	body, _ := json.Marshal(map[string]string{"content": "via root router"})
	req := httptest.NewRequest(http.MethodPost, "/api/notes", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/notes = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestOpenRepository(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.Driver = docstore.DriverFS
	cfg.Store.Path = filepath.Join(t.TempDir(), "notes")

	repo, closeFn, err := OpenRepository(cfg, testutil.DiscardLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if _, ok := repo.(*noteservice.Service); !ok {
		t.Errorf("local config should open a service, got %T", repo)
	}

	cfg.Client.ServerURL = "http://localhost:8080/api"
	repo, closeFn, err = OpenRepository(cfg, testutil.DiscardLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if _, ok := repo.(*client.Client); !ok {
		t.Errorf("remote config should open a client, got %T", repo)
	}
}

func TestOpenServiceUnknownDriver(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.Driver = "mongo"
	if _, _, err := OpenService(cfg, testutil.DiscardLogger()); err == nil {
		t.Fatal("expected error")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestRunServesAndShutsDown(t *testing.T) {
	root := t.TempDir()
	store, err := docstore.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	cfg.App.Timezone = "UTC"
	cfg.App.HTTP.Port = freePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", cfg.App.HTTP.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, WithConfig(cfg), WithStore(store), WithLogger(testutil.DiscardLogger()))
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/health/live")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	body, _ := json.Marshal(map[string]string{"content": "through Run", "topic": "dev"})
	resp, err := http.Post(base+"/api/notes", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d", resp.StatusCode)
	}

	// The injected store received the note.
	docs, err := store.Query(context.Background(), "notes", docstore.Eq("content", "through Run"))
	if err != nil || len(docs) != 1 {
		t.Fatalf("store docs = %d, err = %v", len(docs), err)
	}

	events, err := http.Get(base + "/api/events")
	if err != nil {
		t.Fatal(err)
	}
	defer events.Body.Close()
	lines := make(chan string, 64)
	go func() {
		scanner := bufio.NewScanner(events.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	// Documents written by another program reach the event stream through
	// the watcher. Keep dropping files until the watcher has started.
	external := `{"content":"dropped in","topic":"health","timeDetails":{"year":2025}}`
	seen := false
	for i := 0; i < 50 && !seen; i++ {
		name := filepath.Join(root, "notes", fmt.Sprintf("external-%d.json", i))
		if err := os.WriteFile(name, []byte(external), 0o644); err != nil {
			t.Fatal(err)
		}
		timeout := time.After(100 * time.Millisecond)
	wait:
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatal("event stream closed early")
				}
				if strings.Contains(line, "dropped in") {
					seen = true
					break wait
				}
			case <-timeout:
				break wait
			}
		}
	}
	if !seen {
		t.Fatal("external document never reached the event stream")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	if _, err := store.Query(context.Background(), "notes", docstore.Eq("topic", "dev")); err != nil {
		t.Errorf("store should stay open after Run: %v", err)
	}
}
