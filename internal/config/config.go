package config

import (
	"fmt"
	"time"

	"github.com/dshills/treedoc/internal/config/loader"
)

// Config holds the settings of a treedoc run.
type Config struct {
	// Schema is the path of a schema definition file. Empty selects the
	// built-in schema.
	Schema string

	// Steps is the path of a JSON file holding an array of steps.
	Steps string

	// Out is the directory results are written to. Empty writes to stdout.
	Out string

	// Pretty indents JSON output.
	Pretty bool

	// Concurrency bounds the number of documents processed at once.
	Concurrency int

	Log     LogConfig
	Watch   WatchConfig
	Metrics MetricsConfig
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string // debug, info, warn or error
	Format string // text or json

	// ErrorFile receives warnings and errors when set. Other entries stay
	// on stderr.
	ErrorFile string
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Enabled  bool
	Debounce time.Duration

	// Buffer is the number of change events queued before the watcher
	// blocks.
	Buffer int
}

// MetricsConfig configures the metrics endpoint.
type MetricsConfig struct {
	// Addr is the listen address of the /metrics endpoint in watch mode.
	// Empty disables it.
	Addr string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Concurrency: 4,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
			Buffer:   16,
		},
	}
}

// Option configures loading.
type Option func(*options)

type options struct {
	fs        loader.FileSystem
	file      string
	envPrefix string
	env       loader.Loader
}

// WithFile layers the given configuration file over the defaults.
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// WithFileSystem sets the file system configuration files are read from.
func WithFileSystem(fs loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithEnvPrefix sets the environment variable prefix. Empty disables the
// environment layer.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithEnvLoader replaces the environment layer.
func WithEnvLoader(l loader.Loader) Option {
	return func(o *options) {
		o.env = l
	}
}

// DefaultEnvPrefix is the prefix of environment variables read by Load.
const DefaultEnvPrefix = "TREEDOC_"

// stringKeys are the settings kept as raw strings when read from the
// environment, so TREEDOC_OUT=1 names a directory rather than a number.
var stringKeys = []string{
	"schema",
	"steps",
	"out",
	"log.level",
	"log.format",
	"log.errorFile",
	"metrics.addr",
}

// Load builds a Config from the defaults, an optional file, and the
// environment, in increasing order of precedence. The result is not
// validated: callers layer command line flags on top and then call
// Validate.
func Load(opts ...Option) (*Config, error) {
	o := &options{fs: loader.DefaultFS(), envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(o)
	}

	merged := map[string]any{}
	if o.file != "" {
		fileConfig, err := loader.LoadFile(o.fs, o.file)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		merged = loader.DeepMerge(merged, fileConfig)
	}

	env := o.env
	if env == nil && o.envPrefix != "" {
		envLoader := loader.NewEnvLoader(o.envPrefix)
		envLoader.KeepStrings(stringKeys...)
		env = envLoader
	}
	if env != nil {
		envConfig, err := env.Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, envConfig)
	}

	cfg := Default()
	if err := cfg.Apply(merged); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply overrides settings with the values in m. Keys follow the loader
// map layout, e.g. "log.level" is m["log"]["level"].
func (c *Config) Apply(m map[string]any) error {
	d := decoder{m: m}
	d.str("schema", &c.Schema)
	d.str("steps", &c.Steps)
	d.str("out", &c.Out)
	d.boolean("pretty", &c.Pretty)
	d.integer("concurrency", &c.Concurrency)
	d.str("log.level", &c.Log.Level)
	d.str("log.format", &c.Log.Format)
	d.str("log.errorFile", &c.Log.ErrorFile)
	d.boolean("watch.enabled", &c.Watch.Enabled)
	d.duration("watch.debounce", &c.Watch.Debounce)
	d.integer("watch.buffer", &c.Watch.Buffer)
	d.str("metrics.addr", &c.Metrics.Addr)
	return d.err
}

// Validate checks that settings hold usable values.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log.level", Message: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return &ValidationError{Path: "log.format", Message: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}
	if c.Concurrency < 1 {
		return &ValidationError{Path: "concurrency", Message: "must be at least 1"}
	}
	if c.Watch.Debounce < 0 {
		return &ValidationError{Path: "watch.debounce", Message: "must not be negative"}
	}
	if c.Watch.Buffer < 1 {
		return &ValidationError{Path: "watch.buffer", Message: "must be at least 1"}
	}
	return nil
}

// decoder copies typed values out of a loader map, keeping the first error.
type decoder struct {
	m   map[string]any
	err error
}

func (d *decoder) get(path string) (any, bool) {
	if d.err != nil {
		return nil, false
	}
	return loader.GetByPath(d.m, path)
}

func (d *decoder) mismatch(path string, v any, want string) {
	d.err = &TypeError{Path: path, Got: fmt.Sprintf("%T", v), Want: want}
}

func (d *decoder) str(path string, dst *string) {
	if v, ok := d.get(path); ok {
		s, ok := v.(string)
		if !ok {
			d.mismatch(path, v, "string")
			return
		}
		*dst = s
	}
}

func (d *decoder) boolean(path string, dst *bool) {
	if v, ok := d.get(path); ok {
		b, ok := v.(bool)
		if !ok {
			d.mismatch(path, v, "bool")
			return
		}
		*dst = b
	}
}

func (d *decoder) integer(path string, dst *int) {
	v, ok := d.get(path)
	if !ok {
		return
	}
	switch n := v.(type) {
	case int:
		*dst = n
	case int64:
		*dst = int(n)
	case float64:
		if n != float64(int(n)) {
			d.mismatch(path, v, "integer")
			return
		}
		*dst = int(n)
	default:
		d.mismatch(path, v, "integer")
	}
}

func (d *decoder) duration(path string, dst *time.Duration) {
	v, ok := d.get(path)
	if !ok {
		return
	}
	switch x := v.(type) {
	case time.Duration:
		*dst = x
	case string:
		dur, err := time.ParseDuration(x)
		if err != nil {
			d.mismatch(path, v, "duration")
			return
		}
		*dst = dur
	case int64:
		*dst = time.Duration(x) * time.Millisecond
	case int:
		*dst = time.Duration(x) * time.Millisecond
	default:
		d.mismatch(path, v, "duration")
	}
}
