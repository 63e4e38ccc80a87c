package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nesting levels: LEAPPREP_SOURCE__QUERY sets source.query.
const EnvPrefix = "LEAPPREP_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// flagKeys maps CLI flag names to config keys. Flags not listed here are
// command options and never reach the config.
var flagKeys = map[string]string{
	"state":       "state_path",
	"source-type": "source.type",
	"source-path": "source.path",
	"query":       "source.query",
	"cache":       "source.cache",
	"refresh":     "source.refresh",
	"output":      "output",
	"output-dir":  "output_dir",
	"seed":        "split.seed",
	"verbose":     "verbose",
}

// listKeys are split on commas when they come from the environment.
var listKeys = map[string]bool{
	"source.drop_columns": true,
	"outliers.include":    true,
	"outliers.exclude":    true,
	"scale.columns":       true,
}

// pathFlags are resolved against the working directory rather than the
// project root.
var pathFlags = map[string]string{
	"state":       "state_path",
	"source-path": "source.path",
	"cache":       "source.cache",
	"output-dir":  "output_dir",
}

// configExistsIn returns the config file in dir, or "".
func configExistsIn(dir string) string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findConfigUpward searches upward from startDir for a leapprep config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if path := configExistsIn(dir); path != "" {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, in-memory or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// envKey turns LEAPPREP_SOURCE__DROP_COLUMNS into source.drop_columns.
func envKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "__", ".")
}

// Load loads configuration from defaults, the config file, environment
// variables and flags. Precedence (highest to lowest): flags > env vars >
// config file > defaults.
//
// When cfgFile is empty, leapprep.yaml (or .yml) is searched for upward
// from the working directory. Relative paths in the configuration are
// resolved against the directory holding the config file; relative paths
// given as flags are resolved against the working directory.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	if cfgFile == "" {
		cfgFile = findConfigUpward(cwd)
	}
	projectRoot := cwd
	if cfgFile != "" {
		abs, err := filepath.Abs(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		cfgFile = abs
		projectRoot = filepath.Dir(abs)
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load config file
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Load environment variables (LEAPPREP_ prefix)
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(name, value string) (string, any) {
		key := envKey(name)
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfgFile
	cfg.ProjectRoot = projectRoot

	expandSourceEnvVars(&cfg.Source)
	resolvePaths(&cfg, flags)
	return &cfg, nil
}

// resolvePaths anchors relative paths at the project root, except those set
// by flags which are anchored at the working directory.
func resolvePaths(cfg *Config, flags *pflag.FlagSet) {
	fromFlag := func(key string) bool {
		if flags == nil {
			return false
		}
		for name, k := range pathFlags {
			if k == key && flags.Changed(name) {
				return true
			}
		}
		return false
	}
	resolve := func(key string, p *string) {
		if fromFlag(key) {
			if *p != "" && *p != ":memory:" {
				if abs, err := filepath.Abs(*p); err == nil {
					*p = abs
				}
			}
			return
		}
		*p = resolvePathRelativeTo(*p, cfg.ProjectRoot)
	}

	resolve("source.path", &cfg.Source.Path)
	resolve("source.cache", &cfg.Source.Cache)
	resolve("state_path", &cfg.StatePath)
	resolve("output_dir", &cfg.OutputDir)
	for name, path := range cfg.Source.Tables {
		cfg.Source.Tables[name] = resolvePathRelativeTo(path, cfg.ProjectRoot)
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match // Return original if not found
	})
}

// expandSourceEnvVars expands environment variables in connection fields so
// credentials can stay out of leapprep.yaml.
func expandSourceEnvVars(s *SourceConfig) {
	s.Host = expandEnvVars(s.Host)
	s.Username = expandEnvVars(s.Username)
	s.Password = expandEnvVars(s.Password)
	s.Database = expandEnvVars(s.Database)
	s.Path = expandEnvVars(s.Path)
	for k, v := range s.Options {
		s.Options[k] = expandEnvVars(v)
	}
}

// configKey is used to store the loaded config in context.
type configKey struct{}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored by WithConfig, or the defaults.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok && c != nil {
		return c
	}
	return Default()
}

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
