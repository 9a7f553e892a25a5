package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"gimgdl/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// globalOptions are shared by every command
type globalOptions struct {
	configFile string
	logLevel   string
	noColor    bool
	verbose    bool
}

// exitError carries a message that has already been shown to the user
type exitError struct {
	err error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// newRootCmd builds the command tree. Output goes to out and errOut.
func newRootCmd(out, errOut io.Writer) *cobra.Command {
	global := &globalOptions{}
	dl := &downloadOptions{}

	rootCmd := &cobra.Command{
		Use:   "gimgdl",
		Short: "Download images from Google Custom Search results",
		Long: `gimgdl pages through Google Custom Search image results for a query and
downloads every result to a local directory until a target count is reached
or the results run out.

A Custom Search API key and a Programmable Search Engine ID are required.
They can be passed as flags, set in a config file, or provided through the
GIMGDL_API_KEY and GIMGDL_ENGINE_ID environment variables.`,
		Example: `  # Download up to 500 hedgehog images into ./images
  gimgdl -q hedgehog -a $API_KEY -e $ENGINE_ID

  # Fifty large photos, normalized to JPEG
  gimgdl -q "red panda" -t 50 --img-size large --strategy jpeg -o pandas

  # Use credentials from ~/.config/gimgdl/config.yaml
  gimgdl -q lighthouse --min-width 1024 --min-height 768`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if global.noColor || os.Getenv("NO_COLOR") != "" {
				ui.SetColor(false)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, global, dl)
		},
	}

	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&global.configFile, "config", "c", "", "config file (default is .gimgdl.yaml or ~/.config/gimgdl/config.yaml)")
	pf.StringVar(&global.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&global.noColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&global.verbose, "verbose", "v", false, "show banner, logs and per-page details")

	bindDownloadFlags(rootCmd, dl)
	rootCmd.AddCommand(newConfigCmd(global))

	rootCmd.SetVersionTemplate(`gimgdl {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		var shown *exitError
		if !errors.As(err, &shown) {
			ui.PrintError("Error", err)
		}
		stop()
		os.Exit(1)
	}
}
