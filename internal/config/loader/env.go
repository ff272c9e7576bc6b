package loader

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "TREEDOC_")
	mapping map[string]string // Env var -> config path
	raw     map[string]bool   // Config paths whose values are not parsed
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "TREEDOC_").
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, defaultEnvMapping(prefix))
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
		environ: os.Environ,
	}
}

// defaultEnvMapping maps variables whose names don't follow the
// SECTION_SETTING convention.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "SCHEMA":       "schema",
		prefix + "STEPS":        "steps",
		prefix + "OUT":          "out",
		prefix + "PRETTY":       "pretty",
		prefix + "CONCURRENCY":  "concurrency",
		prefix + "METRICS_ADDR": "metrics.addr",
	}
}

// Load reads environment variables and returns a configuration map.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if l.raw[path] {
			setByPath(config, path, value)
			continue
		}
		setByPath(config, path, parseValue(value))
	}
	return config, nil
}

// KeepStrings marks config paths whose values are used as given instead of
// being parsed into numbers, booleans or durations.
func (l *EnvLoader) KeepStrings(paths ...string) {
	if l.raw == nil {
		l.raw = make(map[string]bool, len(paths))
	}
	for _, p := range paths {
		l.raw[p] = true
	}
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// envToPath converts TREEDOC_LOG_LEVEL to log.level and
// TREEDOC_WATCH_DEBOUNCE_TIME to watch.debounceTime.
func (l *EnvLoader) envToPath(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, l.prefix), "_")
	section := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return section
	}
	setting := strings.ToLower(parts[1])
	for _, part := range parts[2:] {
		if part != "" {
			setting += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return section + "." + setting
}

// parseValue attempts to parse the string value into an appropriate type.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	lower := strings.ToLower(s)
	switch lower {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	// Only parse floats with a decimal point to avoid misreading ints.
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d
	}

	if (strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")) && gjson.Valid(s) {
		return gjson.Parse(s).Value()
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// GetByPath reads a value from a nested map using a dot-separated path.
func GetByPath(data map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	current := data
	for i, part := range parts {
		v, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		if current, ok = v.(map[string]any); !ok {
			return nil, false
		}
	}
	return nil, false
}
