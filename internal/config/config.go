package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/pkg/router"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "fsroute.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultRoutes is the default routes directory.
	DefaultRoutes = "app/routes"

	// DefaultManifest is the default manifest written by `fsroute gen`.
	DefaultManifest = "routes.json"

	// DefaultWatchInterval is the default polling interval for --watch.
	DefaultWatchInterval = "500ms"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "fsroute"

	// DefaultMetricsPath is the default metrics endpoint.
	DefaultMetricsPath = "/metrics"
)

// Environment variables that override the file.
const (
	EnvRoutes   = "FSROUTE_ROUTES"
	EnvManifest = "FSROUTE_MANIFEST"
	EnvPort     = "FSROUTE_PORT"
)

// Config represents the complete fsroute.json configuration.
type Config struct {
	// Routes is the path to the routes directory.
	Routes string `json:"routes,omitempty"`

	// PageFiles are the file names that mark a folder as a route.
	PageFiles []string `json:"pageFiles,omitempty"`

	// Manifest is where `fsroute gen` writes the route manifest: a file
	// path or an s3://bucket/key URL.
	Manifest string `json:"manifest,omitempty"`

	// EmptyCatchAll is "bind" or "omit".
	EmptyCatchAll string `json:"emptyCatchAll,omitempty"`

	// Server contains server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Watch rebuilds the table when the routes directory changes.
	Watch bool `json:"watch,omitempty"`

	// WatchInterval is the polling interval (e.g., "500ms").
	WatchInterval string `json:"watchInterval,omitempty"`

	// Ignore contains patterns to ignore during watch.
	Ignore []string `json:"ignore,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Disabled turns off the metrics middleware and endpoint.
	Disabled bool `json:"disabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`

	// Path is the metrics endpoint.
	Path string `json:"path,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// TracerName is the tracer name.
	TracerName string `json:"tracerName,omitempty"`

	// Exporter is "none" (default, global provider) or "stdout".
	Exporter string `json:"exporter,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory.
// It looks for fsroute.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadOrDefault is like Load but returns defaults rooted at dir when no
// fsroute.json exists.
func LoadOrDefault(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := New()
		cfg.configPath = path
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R010").
				WithDetail("No fsroute.json found in " + filepath.Dir(path)).
				WithSuggestion("Create fsroute.json or run with defaults from the project root")
		}
		return nil, errors.New("R011").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("R011").
			WithLocation(path).
			WithDetail("Failed to parse fsroute.json: " + err.Error()).
			WithSuggestion("Check that fsroute.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("R011").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("R011").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Routes == "" {
		c.Routes = DefaultRoutes
	}
	if len(c.PageFiles) == 0 {
		c.PageFiles = append([]string(nil), router.DefaultPageFiles...)
	}
	if c.Manifest == "" {
		c.Manifest = DefaultManifest
	}
	if c.EmptyCatchAll == "" {
		c.EmptyCatchAll = router.EmptyCatchAllBind.String()
	}

	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.WatchInterval == "" {
		c.Server.WatchInterval = DefaultWatchInterval
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "fsroute"
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = "none"
	}
}

// ApplyEnv overrides fields from FSROUTE_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvRoutes); v != "" {
		c.Routes = v
	}
	if v := getenv(EnvManifest); v != "" {
		c.Manifest = v
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("R012").
				WithDetail(EnvPort + " must be a number, got " + strconv.Quote(v))
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("R012").
			WithDetail("server.port must be between 0 and 65535")
	}
	if _, ok := router.ParseEmptyCatchAll(c.EmptyCatchAll); !ok {
		return errors.New("R012").
			WithDetail(`emptyCatchAll must be "bind" or "omit", got ` + strconv.Quote(c.EmptyCatchAll))
	}
	if d, err := time.ParseDuration(c.Server.WatchInterval); err != nil || d <= 0 {
		return errors.New("R012").
			WithDetail("server.watchInterval must be a positive duration, got " + strconv.Quote(c.Server.WatchInterval))
	}
	switch c.Tracing.Exporter {
	case "none", "stdout":
	default:
		return errors.New("R012").
			WithDetail(`tracing.exporter must be "none" or "stdout", got ` + strconv.Quote(c.Tracing.Exporter))
	}
	for _, name := range c.PageFiles {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return errors.New("R012").
				WithDetail("pageFiles entries must be plain file names, got " + strconv.Quote(name))
		}
	}
	return nil
}

// Address returns the address string for the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the full URL for the server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// RoutesPath returns the routes directory resolved against the config
// directory.
func (c *Config) RoutesPath() string {
	return c.resolve(c.Routes)
}

// ManifestLocation returns the manifest location. File paths are resolved
// against the config directory; s3:// URLs are returned unchanged.
func (c *Config) ManifestLocation() string {
	if strings.HasPrefix(c.Manifest, "s3://") {
		return c.Manifest
	}
	return c.resolve(c.Manifest)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// WatchInterval returns the parsed polling interval.
func (c *Config) WatchInterval() time.Duration {
	d, err := time.ParseDuration(c.Server.WatchInterval)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultWatchInterval)
	}
	return d
}

// BuildOptions returns the router options selected by the config.
func (c *Config) BuildOptions() []router.BuildOption {
	mode, _ := router.ParseEmptyCatchAll(c.EmptyCatchAll)
	return []router.BuildOption{router.WithEmptyCatchAll(mode)}
}

// ScannerOptions returns the scanner options selected by the config.
func (c *Config) ScannerOptions() []router.ScannerOption {
	return []router.ScannerOption{router.WithPageFiles(c.PageFiles...)}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing fsroute.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("R010").
				WithDetail("No fsroute.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
