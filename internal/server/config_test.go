package server

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/youssefawwad88/RealEstate/pkg/constants"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server-config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig(%q) error = %v", path, err)
		}
		if cfg.Address != constants.DefaultServerAddress {
			t.Errorf("expected default address, got %q", cfg.Address)
		}
		if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
			t.Errorf("expected default upload size, got %d", cfg.UploadSizeBytes())
		}
		if cfg.BatchLimit() != constants.DefaultMaxBatchRecords {
			t.Errorf("expected default batch limit, got %d", cfg.BatchLimit())
		}
		if cfg.ShutdownTimeout != DefaultShutdownTimeout {
			t.Errorf("expected default shutdown timeout, got %s", cfg.ShutdownTimeout)
		}
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `address: 127.0.0.1:9000
maxUploadSize: 2M
maxBatchRecords: 50
readTimeout: 5s
shutdownTimeout: 0s
logging:
  level: debug
  format: console
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"address", cfg.Address, "127.0.0.1:9000"},
		{"upload size", cfg.UploadSizeBytes(), int64(2 * 1024 * 1024)},
		{"batch limit", cfg.BatchLimit(), 50},
		{"read timeout", cfg.ReadTimeout, 5 * time.Second},
		{"write timeout default", cfg.WriteTimeout, DefaultWriteTimeout},
		{"zero shutdown timeout", cfg.ShutdownTimeout, DefaultShutdownTimeout},
		{"logging level", cfg.Logging.Level, "debug"},
		{"logging format", cfg.Logging.Format, "console"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		sizeErr  bool
	}{
		{"bad size", "maxUploadSize: invalid", true},
		{"bad unit", "maxUploadSize: 1TB", true},
		{"bad yaml", "address: [unterminated", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.contents))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if errors.Is(err, ErrInvalidSize) != tt.sizeErr {
				t.Errorf("errors.Is(err, ErrInvalidSize) = %v for %v", !tt.sizeErr, err)
			}
		})
	}
}

func TestLimiter(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Limiter() != nil {
		t.Fatal("expected no limiter by default")
	}

	cfg.RateLimit = 2.5
	limiter := cfg.Limiter()
	if limiter == nil {
		t.Fatal("expected limiter")
	}
	if limiter.Burst() != 3 {
		t.Errorf("expected burst rounded up to 3, got %d", limiter.Burst())
	}

	cfg.RateBurst = 10
	if got := cfg.Limiter().Burst(); got != 10 {
		t.Errorf("expected configured burst 10, got %d", got)
	}
}

func TestSetUploadSizeBytes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetUploadSizeBytes(0)
	if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
		t.Errorf("non-positive size should be ignored, got %d", cfg.UploadSizeBytes())
	}
	cfg.SetUploadSizeBytes(4096)
	if cfg.UploadSizeBytes() != 4096 || cfg.MaxUploadSize != "4096" {
		t.Errorf("expected 4096, got %d (%s)", cfg.UploadSizeBytes(), cfg.MaxUploadSize)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{input: "", want: constants.DefaultMaxUploadSizeBytes},
		{input: "1024", want: 1024},
		{input: "512b", want: 512},
		{input: "256K", want: 256 * 1024},
		{input: "1m", want: 1024 * 1024},
		{input: "3 MB", want: 3 * 1024 * 1024},
		{input: "2G", want: 2 * 1024 * 1024 * 1024},
		{input: "  4096   ", want: 4096},
		{input: "1TB", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "-5K", wantErr: true},
		{input: "9223372036854775807K", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSize) {
					t.Fatalf("ParseSize(%q) error = %v, want ErrInvalidSize", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
