package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName         = "jobpilot"
	ConfigFileName  = "config.json"
	ProxiesFileName = "proxies.txt"
	DataDirName     = "data"
)

// Config contains search defaults, board credentials and auto-apply limits.
type Config struct {
	DefaultQuery    string `json:"default_query"`
	DefaultLocation string `json:"default_location"`
	DefaultLimit    int    `json:"default_limit"`

	Adzuna  AdzunaConfig  `json:"adzuna"`
	JSearch JSearchConfig `json:"jsearch"`
	TheMuse TheMuseConfig `json:"themuse"`
	Careers CareersConfig `json:"careers"`
	Gemini  GeminiConfig  `json:"gemini"`

	AutoApply AutoApplyConfig `json:"auto_apply"`
	Network   NetworkConfig   `json:"network"`
	Store     StoreConfig     `json:"store"`
	Schedule  ScheduleConfig  `json:"schedule"`
}

type AdzunaConfig struct {
	AppID          string `json:"app_id"`
	AppKey         string `json:"app_key"`
	AppKeyFile     string `json:"app_key_file,omitempty"`
	Country        string `json:"country"`
	ResultsPerPage int    `json:"results_per_page"`
}

type JSearchConfig struct {
	APIKey     string `json:"api_key"`
	APIKeyFile string `json:"api_key_file,omitempty"`
	Host       string `json:"host"`
}

type TheMuseConfig struct {
	Enabled bool   `json:"enabled"`
	APIKey  string `json:"api_key,omitempty"`
}

type CareersConfig struct {
	Pages []string `json:"pages"`
}

type GeminiConfig struct {
	APIKey     string `json:"api_key"`
	APIKeyFile string `json:"api_key_file,omitempty"`
	Model      string `json:"model"`
}

// AutoApplyConfig bounds automated applications.
type AutoApplyConfig struct {
	Enabled   bool `json:"enabled"`
	Threshold int  `json:"threshold"`
	BatchSize int  `json:"batch_size"`
	DelayMS   int  `json:"delay_ms"`
	DailyCap  int  `json:"daily_cap"`
}

// Delay returns the pause between consecutive automated applications.
func (c AutoApplyConfig) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

type NetworkConfig struct {
	RequestsPerMinute int `json:"requests_per_minute"`
	TimeoutSeconds    int `json:"timeout_seconds"`
}

// StoreConfig selects the persistence backend: file, redis or postgres.
type StoreConfig struct {
	Backend     string `json:"backend"`
	Path        string `json:"path,omitempty"`
	RedisURL    string `json:"redis_url,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`
}

type ScheduleConfig struct {
	Spec string `json:"spec"`
}

func DefaultConfig() Config {
	return Config{
		DefaultQuery:    envString("JOBPILOT_DEFAULT_QUERY", ""),
		DefaultLocation: envString("JOBPILOT_DEFAULT_LOCATION", ""),
		DefaultLimit:    envInt("JOBPILOT_DEFAULT_LIMIT", 20),
		Adzuna: AdzunaConfig{
			AppID:          envString("ADZUNA_APP_ID", ""),
			AppKey:         envString("ADZUNA_APP_KEY", ""),
			Country:        envString("ADZUNA_COUNTRY", "se"),
			ResultsPerPage: 20,
		},
		JSearch: JSearchConfig{
			APIKey: envString("RAPIDAPI_KEY", ""),
			Host:   "jsearch.p.rapidapi.com",
		},
		TheMuse: TheMuseConfig{
			APIKey: envString("THEMUSE_API_KEY", ""),
		},
		Gemini: GeminiConfig{
			APIKey: envString("GEMINI_API_KEY", ""),
			Model:  envString("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		AutoApply: AutoApplyConfig{
			Enabled:   envBool("JOBPILOT_AUTO_APPLY", false),
			Threshold: 85,
			BatchSize: 5,
			DelayMS:   2000,
			DailyCap:  envInt("JOBPILOT_DAILY_CAP", 20),
		},
		Network: NetworkConfig{
			RequestsPerMinute: envInt("JOBPILOT_REQUESTS_PER_MINUTE", 10),
			TimeoutSeconds:    30,
		},
		Store: StoreConfig{
			Backend:     envString("JOBPILOT_STORE", "file"),
			RedisURL:    envString("REDIS_URL", ""),
			DatabaseURL: envString("DATABASE_URL", ""),
		},
		Schedule: ScheduleConfig{
			Spec: "@every 6h",
		},
	}
}

func ConfigDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("JOBPILOT_CONFIG_DIR")); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func ProxiesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProxiesFileName), nil
}

// DataDir is where the file store keeps its records unless store.path is set.
func DataDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DataDirName), nil
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadFile(path)
}

// LoadFile reads a json5 config file over the defaults. A missing or empty
// file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	defaults := DefaultConfig()
	if c.AutoApply.Threshold <= 0 || c.AutoApply.Threshold > 100 {
		c.AutoApply.Threshold = defaults.AutoApply.Threshold
	}
	if c.AutoApply.BatchSize <= 0 {
		c.AutoApply.BatchSize = defaults.AutoApply.BatchSize
	}
	if c.AutoApply.DelayMS < 0 {
		c.AutoApply.DelayMS = 0
	}
	if c.AutoApply.DailyCap <= 0 {
		c.AutoApply.DailyCap = defaults.AutoApply.DailyCap
	}
	if c.Network.TimeoutSeconds <= 0 {
		c.Network.TimeoutSeconds = defaults.Network.TimeoutSeconds
	}
	if strings.TrimSpace(c.Store.Backend) == "" {
		c.Store.Backend = defaults.Store.Backend
	}
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if strings.TrimSpace(c.Adzuna.Country) == "" {
		c.Adzuna.Country = defaults.Adzuna.Country
	}
	if c.Adzuna.ResultsPerPage <= 0 {
		c.Adzuna.ResultsPerPage = defaults.Adzuna.ResultsPerPage
	}
	if strings.TrimSpace(c.JSearch.Host) == "" {
		c.JSearch.Host = defaults.JSearch.Host
	}
	if strings.TrimSpace(c.Schedule.Spec) == "" {
		c.Schedule.Spec = defaults.Schedule.Spec
	}
}

// Init writes default config.json and proxies.txt if they don't already exist.
func Init() ([]string, error) {
	var created []string

	dir, err := ConfigDir()
	if err != nil {
		return created, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	proxiesPath := filepath.Join(dir, ProxiesFileName)
	if _, err := os.Stat(proxiesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(proxiesPath, []byte(""), 0o644); err != nil {
			return created, err
		}
		created = append(created, proxiesPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func LoadProxies(flagValue string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return splitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("JOBPILOT_PROXIES")); env != "" {
		return splitCSV(env), nil
	}

	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
