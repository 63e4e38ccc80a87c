package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapprep/internal/acquire"
	"github.com/leapstack-labs/leapprep/internal/cli/output"
	"github.com/leapstack-labs/leapprep/internal/config"
	"github.com/leapstack-labs/leapprep/pkg/adapter"
)

const configHeader = `# LeapPrep project configuration.
#
# Every key can be overridden with a LEAPPREP_ environment variable, using a
# double underscore between levels (LEAPPREP_SPLIT__SEED=7), or with the
# matching command-line flag.
`

// InitOptions holds options for the init command.
type InitOptions struct {
	Force      bool
	SourceType string
	SourcePath string
	Query      string
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a leapprep.yaml with default settings",
		Long: `Initialize a LeapPrep project by writing leapprep.yaml with the default
thresholds, split ratios and scaling method.

By default the source is a CSV file. Use --source-type with --query to start
from a database source instead; connection details are left for you to fill
in, and ${VAR} references are expanded from the environment.`,
		Example: `  # Initialize in current directory
  leapprep init

  # Start from a postgres source
  leapprep init --source-type postgres --query "SELECT * FROM properties_2017"

  # Force overwrite existing config
  leapprep init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeAuto)
			return runInit(r, dir, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite existing configuration")
	cmd.Flags().StringVar(&opts.SourceType, "source-type", acquire.TypeCSV, "Source type: csv, duckdb, postgres or sqlite")
	cmd.Flags().StringVar(&opts.SourcePath, "path", config.DefaultSourcePath, "CSV file or database file of the source")
	cmd.Flags().StringVar(&opts.Query, "query", "", "Acquisition query for database sources")

	return cmd
}

// initConfig is the subset of the configuration written by init.
type initConfig struct {
	Source    acquire.Source       `yaml:"source"`
	Missing   config.MissingConfig `yaml:"missing"`
	Outliers  config.OutlierConfig `yaml:"outliers"`
	Split     config.SplitConfig   `yaml:"split"`
	Scale     config.ScaleConfig   `yaml:"scale"`
	OutputDir string               `yaml:"output_dir"`
	StatePath string               `yaml:"state_path"`
}

func runInit(r *output.Renderer, dir string, opts *InitOptions) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(configPath); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileNames[0])
	}

	def := config.Default()
	src := acquire.Source{Config: adapter.Config{Type: opts.SourceType, Path: opts.SourcePath}, Query: opts.Query}
	if src.Type != acquire.TypeCSV {
		if src.Path == config.DefaultSourcePath {
			src.Path = ""
		}
		src.Cache = "cache/source.csv"
	}
	if err := src.Validate(); err != nil {
		return fmt.Errorf("invalid source configuration: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(initConfig{
		Source:    src,
		Missing:   def.Missing,
		Outliers:  def.Outliers,
		Split:     def.Split,
		Scale:     def.Scale,
		OutputDir: def.OutputDir,
		StatePath: def.StatePath,
	}); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	if err := os.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	r.StatusLine(configPath, "success", "")
	r.Println()
	r.Success("LeapPrep project initialized!")
	r.Println()
	r.Println("Next steps:")
	r.Println("  1. Point source.path (or source.query) at your raw data")
	r.Println("  2. Run 'leapprep profile' to inspect missing values")
	r.Println("  3. Run 'leapprep run' to write train, test and validate files")
	return nil
}
