package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"sigs.k8s.io/yaml"

	"github.com/kubeadapt/kubeadapt-dashboard/internal/convert"
)

// Config holds all dashboard configuration values.
type Config struct {
	// API server
	Host        string   // DASHBOARD_HOST, default: 0.0.0.0
	Port        int      // DASHBOARD_PORT, default: 8000
	CORSOrigins []string // CORS_ORIGINS, default: *
	StaticDir   string   // KGD_STATIC_DIR, default: ./static

	// Health server
	HealthPort     int  // KGD_HEALTH_PORT, default: 8080
	DebugEndpoints bool // KGD_DEBUG_ENDPOINTS, default: false, enables pprof/debug on health port

	// Cluster access
	Kubeconfig      string        // KUBECONFIG, default: client-go loading rules
	DefaultContext  string        // KGD_DEFAULT_CONTEXT, default: kubeconfig current-context
	DemoMode        bool          // KGD_DEMO_MODE, default: false
	RequestTimeout  time.Duration // KGD_REQUEST_TIMEOUT, default: 30s
	ClientCacheSize int           // KGD_CLIENT_CACHE_SIZE, default: 16
	UsageMetrics    bool          // KGD_USAGE_METRICS, default: false

	// Aggregation
	GPUResource   string   // KGD_GPU_RESOURCE, default: nvidia.com/gpu
	GPUTypeLabels []string // KGD_GPU_TYPE_LABELS or KGD_GPU_LABELS_FILE
	GPULabelsFile string   // KGD_GPU_LABELS_FILE

	// Logging
	LogLevel  string // KGD_LOG_LEVEL, default: info
	LogFormat string // KGD_LOG_FORMAT, default: json

	Version string
}

// gpuLabelsFile is the on-disk shape of KGD_GPU_LABELS_FILE.
type gpuLabelsFile struct {
	GPUTypeLabels []string `json:"gpu_type_labels"`
}

// Load reads configuration from a .env file (when present) and environment
// variables and returns a Config with defaults applied for any unset values.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Config{
		Host:            envOrDefault("DASHBOARD_HOST", "0.0.0.0"),
		Port:            parseInt("DASHBOARD_PORT", 8000),
		CORSOrigins:     parseStringSlice("CORS_ORIGINS"),
		StaticDir:       envOrDefault("KGD_STATIC_DIR", "./static"),
		HealthPort:      parseInt("KGD_HEALTH_PORT", 8080),
		DebugEndpoints:  parseBool("KGD_DEBUG_ENDPOINTS", false),
		Kubeconfig:      os.Getenv("KUBECONFIG"),
		DefaultContext:  os.Getenv("KGD_DEFAULT_CONTEXT"),
		DemoMode:        parseBool("KGD_DEMO_MODE", false),
		RequestTimeout:  parseDuration("KGD_REQUEST_TIMEOUT", 30*time.Second),
		ClientCacheSize: parseInt("KGD_CLIENT_CACHE_SIZE", 16),
		UsageMetrics:    parseBool("KGD_USAGE_METRICS", false),
		GPUResource:     envOrDefault("KGD_GPU_RESOURCE", convert.DefaultGPUResource),
		GPULabelsFile:   os.Getenv("KGD_GPU_LABELS_FILE"),
		LogLevel:        envOrDefault("KGD_LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("KGD_LOG_FORMAT", "json"),
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	// Precedence: KGD_GPU_TYPE_LABELS, then the labels file, then defaults.
	cfg.GPUTypeLabels = parseStringSlice("KGD_GPU_TYPE_LABELS")
	if len(cfg.GPUTypeLabels) == 0 && cfg.GPULabelsFile != "" {
		labels, err := readGPULabelsFile(cfg.GPULabelsFile)
		if err != nil {
			return Config{}, err
		}
		cfg.GPUTypeLabels = labels
	}
	if len(cfg.GPUTypeLabels) == 0 {
		cfg.GPUTypeLabels = append([]string(nil), convert.DefaultGPUTypeLabels...)
	}

	return cfg, nil
}

// Addr returns the API listen address.
func (c Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func readGPULabelsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read KGD_GPU_LABELS_FILE: %w", err)
	}
	var f gpuLabelsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse KGD_GPU_LABELS_FILE %s: %w", path, err)
	}
	return f.GPUTypeLabels, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// parseDuration tries time.ParseDuration first, then falls back to treating
// the value as integer seconds.
func parseDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(v)
	if err == nil {
		return d
	}

	// Fallback: treat as integer seconds
	secs, err := strconv.Atoi(v)
	if err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultVal
}

func parseBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func parseInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func parseStringSlice(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var result []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}
