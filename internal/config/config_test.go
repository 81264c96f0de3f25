package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.DatabasePath != "./data/scraper.db" {
		t.Errorf("database path = %s", cfg.DatabasePath)
	}
	if cfg.IntervalSeconds != 20 {
		t.Errorf("interval = %d", cfg.IntervalSeconds)
	}
	if len(cfg.Endpoints) == 0 {
		t.Error("expected default endpoints")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %s", cfg.LogLevel)
	}
}

func TestLoadFlags(t *testing.T) {
	args := []string{
		"--db", "/tmp/test.db",
		"--endpoint", "https://a.example/api",
		"--endpoint", "https://b.example/api",
		"--interval", "45",
	}
	cfg, err := Load(args)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.DatabasePath != "/tmp/test.db" {
		t.Errorf("database path = %s", cfg.DatabasePath)
	}
	want := []string{"https://a.example/api", "https://b.example/api"}
	if diff := cmp.Diff(want, cfg.Endpoints); diff != "" {
		t.Errorf("endpoints mismatch (-want +got):\n%s", diff)
	}
	if cfg.IntervalSeconds != 45 {
		t.Errorf("interval = %d", cfg.IntervalSeconds)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("ENDPOINTS", "https://x.example/api,https://y.example/api")
	t.Setenv("SCRAPE_INTERVAL", "30")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := []string{"https://x.example/api", "https://y.example/api"}
	if diff := cmp.Diff(want, cfg.Endpoints); diff != "" {
		t.Errorf("endpoints mismatch (-want +got):\n%s", diff)
	}
	if cfg.IntervalSeconds != 30 {
		t.Errorf("interval = %d", cfg.IntervalSeconds)
	}
}

func TestLoadClampsInterval(t *testing.T) {
	cfg, err := Load([]string{"--interval", "1"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.IntervalSeconds != 5 {
		t.Errorf("expected interval clamped to 5, got %d", cfg.IntervalSeconds)
	}
}

func TestResolveProxy(t *testing.T) {
	dir := t.TempDir()
	proxyFile := filepath.Join(dir, "active_proxy.txt")
	if err := os.WriteFile(proxyFile, []byte("http://1.2.3.4:8080\n"), 0o600); err != nil {
		t.Fatalf("write proxy file: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
		env  map[string]string
		want string
	}{
		{
			name: "explicit flag wins",
			cfg:  Config{ProxyURL: "http://flag:1", ProxyFile: proxyFile},
			env:  map[string]string{"HTTPS_PROXY": "http://env:2"},
			want: "http://flag:1",
		},
		{
			name: "environment fallback",
			cfg:  Config{ProxyFile: proxyFile},
			env:  map[string]string{"HTTPS_PROXY": "http://env:2"},
			want: "http://env:2",
		},
		{
			name: "proxy file fallback",
			cfg:  Config{ProxyFile: proxyFile},
			want: "http://1.2.3.4:8080",
		},
		{
			name: "no proxy configured",
			cfg:  Config{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HTTPS_PROXY", tt.env["HTTPS_PROXY"])
			t.Setenv("HTTP_PROXY", "")
			got := tt.cfg.ResolveProxy()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("proxy mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
