package config

import (
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/leapstack-labs/leapprep/internal/acquire"
)

// Default configuration values.
const (
	DefaultSourcePath = "data.csv"
	DefaultOutputDir  = "prepared"
	DefaultStateFile  = ".leapprep/state.db"
	DefaultOutput     = "auto" // Auto-detect: TTY=table, non-TTY=markdown
	DefaultScale      = "minmax"
)

// ConfigFileNames are searched in order.
var ConfigFileNames = []string{"leapprep.yaml", "leapprep.yml"}

// defaultValues is the lowest configuration layer.
func defaultValues() map[string]any {
	return map[string]any{
		"source.type":                 acquire.TypeCSV,
		"source.path":                 DefaultSourcePath,
		"missing.min_column_fraction": 0.75,
		"missing.min_row_fraction":    0.75,
		"outliers.enabled":            true,
		"outliers.trim":               true,
		"split.validate":              0.2,
		"split.test":                  0.1,
		"split.seed":                  123,
		"scale.method":                DefaultScale,
		"output_dir":                  DefaultOutputDir,
		"state_path":                  DefaultStateFile,
		"output":                      DefaultOutput,
		"verbose":                     false,
	}
}

// Default returns the configuration produced by the defaults alone, with
// relative paths left unresolved.
func Default() *Config {
	k := koanf.New(".")
	// a flat map of known keys cannot fail to load or decode
	_ = k.Load(confmap.Provider(defaultValues(), "."), nil)
	var cfg Config
	_ = k.Unmarshal("", &cfg)
	return &cfg
}
