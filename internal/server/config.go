package server

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/youssefawwad88/RealEstate/internal/config"
	"github.com/youssefawwad88/RealEstate/pkg/constants"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// Server timeouts applied when the config leaves them unset.
const (
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// ErrInvalidSize is returned by ParseSize for malformed sizes.
var ErrInvalidSize = errors.New("invalid size")

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// Config defines runtime parameters for the HTTP API.
type Config struct {
	Address string `yaml:"address"`
	// MaxUploadSize bounds request bodies, including CSV uploads ("256K", "2MB").
	MaxUploadSize string `yaml:"maxUploadSize"`
	// MaxBatchRecords bounds the deals of one batch request; 0 takes the default.
	MaxBatchRecords int `yaml:"maxBatchRecords"`
	// RateLimit is the sustained request rate per second across all clients;
	// 0 disables limiting. RateBurst defaults to the rounded-up rate.
	RateLimit       float64              `yaml:"rateLimit"`
	RateBurst       int                  `yaml:"rateBurst"`
	ReadTimeout     time.Duration        `yaml:"readTimeout"`
	WriteTimeout    time.Duration        `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration        `yaml:"shutdownTimeout"`
	Logging         config.LoggingConfig `yaml:"logging"`

	uploadSizeBytes int64
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   strconv.FormatInt(constants.DefaultMaxUploadSizeBytes, 10),
		MaxBatchRecords: constants.DefaultMaxBatchRecords,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
	}
}

// LoadConfig reads the server configuration YAML at path over the defaults.
// A missing file or empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config %s: %w", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("server config %s: %w", path, err)
	}
	return cfg, nil
}

// UploadSizeBytes returns the request body limit in bytes.
func (c *Config) UploadSizeBytes() int64 {
	if c.uploadSizeBytes <= 0 {
		return constants.DefaultMaxUploadSizeBytes
	}
	return c.uploadSizeBytes
}

// SetUploadSizeBytes overrides the request body limit; non-positive sizes are ignored.
func (c *Config) SetUploadSizeBytes(size int64) {
	if size <= 0 {
		return
	}
	c.uploadSizeBytes = size
	c.MaxUploadSize = strconv.FormatInt(size, 10)
}

// BatchLimit returns the maximum number of deals per batch request.
func (c *Config) BatchLimit() int {
	if c.MaxBatchRecords <= 0 {
		return constants.DefaultMaxBatchRecords
	}
	return c.MaxBatchRecords
}

// Limiter returns the request limiter, or nil when limiting is disabled.
func (c *Config) Limiter() *rate.Limiter {
	if c.RateLimit <= 0 {
		return nil
	}
	burst := c.RateBurst
	if burst <= 0 {
		burst = int(math.Ceil(c.RateLimit))
	}
	return rate.NewLimiter(rate.Limit(c.RateLimit), burst)
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Address) == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.MaxBatchRecords <= 0 {
		c.MaxBatchRecords = constants.DefaultMaxBatchRecords
	}
	for _, d := range []struct {
		value    *time.Duration
		fallback time.Duration
	}{
		{&c.ReadTimeout, DefaultReadTimeout},
		{&c.WriteTimeout, DefaultWriteTimeout},
		{&c.ShutdownTimeout, DefaultShutdownTimeout},
	} {
		if *d.value <= 0 {
			*d.value = d.fallback
		}
	}

	size, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = size
	return nil
}

// ParseSize converts a byte size with an optional binary unit ("512", "256K",
// "10MB", "1G") into bytes. An empty string yields the default upload size.
func ParseSize(value string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(value))
	if s == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	split := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if split == -1 {
		split = len(s)
	}
	if split == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, value)
	}

	n, err := strconv.ParseInt(s[:split], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidSize, value, err)
	}
	unit := strings.TrimSpace(s[split:])
	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported unit %q", ErrInvalidSize, unit)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidSize, value)
	}
	return n * multiplier, nil
}
