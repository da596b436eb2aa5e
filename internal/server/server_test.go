package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/haragam22/litmind/internal/config"
	"github.com/haragam22/litmind/internal/testutil"
)

func startTestServer(t *testing.T) (testutil.ServerConfig, *testutil.StartServer) {
	t.Helper()

	cfg := testutil.NewServerConfig(t)
	if err := config.WriteDefault(cfg.ConfigFile); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	manager, err := config.NewManager(cfg.ConfigFile)
	if err != nil {
		t.Fatalf("failed to create config manager: %v", err)
	}

	srv, err := New(Config{
		Host:          cfg.Host,
		Port:          cfg.Port,
		ConfigManager: manager,
		Logger:        cfg.Logger,
	})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Start(ctx)
	}()
	t.Cleanup(cancel)

	if err := testutil.WaitForServer(cfg.URL(), 10*time.Second); err != nil {
		t.Fatalf("server did not become ready: %v", err)
	}
	return cfg, &testutil.StartServer{Cancel: cancel, Done: done}
}

func TestServerLifecycle(t *testing.T) {
	cfg, handle := startTestServer(t)
	client := testutil.HTTPClient()

	t.Run("serves health", func(t *testing.T) {
		resp, err := client.Get(cfg.URL() + "/health")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		var body map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["status"] != "ok" {
			t.Errorf("status = %q", body["status"])
		}
	})

	t.Run("serves ready", func(t *testing.T) {
		resp, err := client.Get(cfg.URL() + "/ready")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("answers CORS preflight", func(t *testing.T) {
		req, err := http.NewRequest("OPTIONS", cfg.URL()+"/api/translate", nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")

		resp, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if resp.Header.Get("Access-Control-Allow-Origin") == "" {
			t.Error("missing Access-Control-Allow-Origin header")
		}
	})

	t.Run("status reports boundaries", func(t *testing.T) {
		resp, err := client.Get(cfg.URL() + "/status")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		var body struct {
			Server     string         `json:"server"`
			Boundaries map[string]any `json:"boundaries"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Server != "running" {
			t.Errorf("server = %q", body.Server)
		}
		for _, key := range []string{"gateway", "prompt", "image", "auth"} {
			if _, ok := body.Boundaries[key]; !ok {
				t.Errorf("boundaries missing %q", key)
			}
		}
	})

	t.Run("graceful shutdown", func(t *testing.T) {
		handle.Cancel()
		if err := testutil.WaitForShutdown(handle.Done, 10*time.Second); err != nil {
			t.Fatalf("shutdown: %v", err)
		}
	})
}

func TestServerPortConflict(t *testing.T) {
	cfg, handle := startTestServer(t)
	defer handle.Stop()

	manager, err := config.NewManager(cfg.ConfigFile)
	if err != nil {
		t.Fatal(err)
	}
	srv, err := New(Config{Host: cfg.Host, Port: cfg.Port, ConfigManager: manager, Logger: cfg.Logger})
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Start(context.Background()); err == nil {
		t.Error("expected bind failure on occupied port")
	}
}
