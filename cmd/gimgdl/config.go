package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gimgdl/pkg/config"
	"gimgdl/pkg/ui"
)

const defaultConfigName = ".gimgdl.yaml"

// exampleConfig is written by "config init"
const exampleConfig = `# gimgdl configuration file
#
# Values can also come from environment variables prefixed with GIMGDL_
# (for example GIMGDL_API_KEY, GIMGDL_ENGINE_ID) or from a .env file.
# Command line flags take precedence over everything else.

# Custom Search API
search:
  # API key from the Google Cloud console (required)
  api_key: ""

  # Programmable Search Engine ID, the "cx" parameter (required)
  engine_id: ""

  # Per-request timeout
  timeout: 30s

  # Optional result filters, sent only when set
  # safe: active | off
  safe: ""
  # img_size: icon | small | medium | large | xlarge | xxlarge | huge
  img_size: ""
  # img_type: clipart | face | lineart | stock | photo | animated
  img_type: ""
  file_type: ""

# Download configuration
download:
  # Output directory, created if missing
  output_directory: "images"

  # Number of images to save before stopping
  target: 500

  # preserve keeps the original bytes and extension
  # jpeg decodes and re-encodes every image as JPEG
  strategy: "preserve"
  jpeg_quality: 90

  # Per-image timeout
  timeout: 60s

  # Largest accepted image in bytes
  max_file_size: 67108864

  # Skip results whose reported size is smaller (0 = no minimum)
  min_width: 0
  min_height: 0

  # Stop after this many result pages (0 = no limit)
  max_pages: 0

  # Write <image>.json with the search result details
  save_metadata: false

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional), rotated by size
  file: ""
  max_size: 100
  max_backups: 3
  max_age: 7
  compress: false

# Prometheus textfile export (optional)
metrics:
  textfile_path: ""
`

func newConfigCmd(global *globalOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage gimgdl configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (GIMGDL_*)
  - .env file
  - Configuration file
  - Default values (lowest priority)`,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create an example configuration file",
		Long: `Create an example configuration file with all available options.

The file is created in the current directory as '.gimgdl.yaml' unless a
different path is given with the --config flag.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, global)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Long: `Show the configuration after merging all sources.

The API key is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, global)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(cmd, global)
		},
	}

	configCmd.AddCommand(initCmd, showCmd, validateCmd)
	return configCmd
}

func runConfigInit(cmd *cobra.Command, global *globalOptions) error {
	configPath := global.configFile
	if configPath == "" {
		configPath = defaultConfigName
	}

	if _, err := os.Stat(configPath); err == nil {
		err := fmt.Errorf("configuration file already exists: %s", configPath)
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Fprintln(cmd.OutOrStdout(), "\nTo overwrite, first remove the existing file:")
		fmt.Fprintf(cmd.OutOrStdout(), "  rm %s\n", configPath)
		return &exitError{err: err}
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			ui.PrintError("Failed to create configuration directory", err)
			return &exitError{err: err}
		}
	}

	// The file will hold an API key
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		ui.PrintError("Failed to create configuration file", err)
		return &exitError{err: err}
	}

	out := cmd.OutOrStdout()
	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "1. Add your API key and search engine ID")
	fmt.Fprintln(out, "2. Run 'gimgdl config validate' to check the configuration")
	fmt.Fprintln(out, "3. Start downloading with 'gimgdl -q <query>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, global *globalOptions) error {
	cfg, err := config.Resolve(global.configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err)
		return &exitError{err: err}
	}

	displayCfg := *cfg
	displayCfg.Search.APIKey = config.MaskSecret(displayCfg.Search.APIKey)

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err)
		return &exitError{err: err}
	}

	out := cmd.OutOrStdout()
	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))

	fmt.Fprintln(out, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(out, "1. Command line flags")
	fmt.Fprintln(out, "2. Environment variables (GIMGDL_*)")
	fmt.Fprintln(out, "3. .env file")
	if global.configFile != "" {
		fmt.Fprintf(out, "4. Configuration file: %s\n", global.configFile)
	} else {
		fmt.Fprintln(out, "4. Configuration file: (searched in default locations)")
	}
	fmt.Fprintln(out, "5. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, global *globalOptions) error {
	cfg, err := config.Resolve(global.configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err)
		return &exitError{err: err}
	}

	out := cmd.OutOrStdout()
	var problems []error
	if err := cfg.Validate(); err != nil {
		problems = append(problems, err)
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Errorf("cannot create log directory: %w", err))
		}
	}

	if len(problems) > 0 {
		err := errors.Join(problems...)
		ui.PrintError("Configuration has errors")
		fmt.Fprintf(out, "%v\n", err)
		return &exitError{err: err}
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  API key: %s\n", config.MaskSecret(cfg.Search.APIKey))
	fmt.Fprintf(out, "  Engine ID: %s\n", cfg.Search.EngineID)
	fmt.Fprintf(out, "  Output directory: %s\n", cfg.Download.OutputDirectory)
	fmt.Fprintf(out, "  Target: %d images\n", cfg.Download.Target)
	fmt.Fprintf(out, "  Strategy: %s\n", cfg.Download.Strategy)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
