package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"gimgdl/internal/downloader"
	"gimgdl/pkg/config"
	"gimgdl/pkg/customsearch"
	"gimgdl/pkg/fetcher"
	"gimgdl/pkg/logger"
	"gimgdl/pkg/metrics"
	"gimgdl/pkg/storage"
	"gimgdl/pkg/ui"
)

// downloadOptions holds the root command's download flags
type downloadOptions struct {
	query       string
	apiKey      string
	engineID    string
	output      string
	target      int
	strategy    string
	minWidth    int
	minHeight   int
	maxPages    int
	safe        string
	imgSize     string
	imgType     string
	fileType    string
	timeout     time.Duration
	metricsFile string
	metadata    bool
	notify      bool
}

func bindDownloadFlags(cmd *cobra.Command, o *downloadOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.query, "query", "q", "", "search query text (required)")
	f.StringVarP(&o.apiKey, "api-key", "a", "", "Custom Search API key")
	f.StringVarP(&o.engineID, "engine-id", "e", "", "Programmable Search Engine ID")
	f.StringVarP(&o.output, "output", "o", "images", "output directory for downloads")
	f.IntVarP(&o.target, "target", "t", 500, "number of images to download")
	f.StringVar(&o.strategy, "strategy", config.StrategyPreserve, "save strategy: preserve (original bytes) or jpeg (re-encode)")
	f.IntVar(&o.minWidth, "min-width", 0, "skip results narrower than this many pixels")
	f.IntVar(&o.minHeight, "min-height", 0, "skip results shorter than this many pixels")
	f.IntVar(&o.maxPages, "max-pages", 0, "stop after this many result pages (0 = no limit)")
	f.StringVar(&o.safe, "safe", "", "SafeSearch level (active, off)")
	f.StringVar(&o.imgSize, "img-size", "", "image size filter (icon, small, medium, large, xlarge, xxlarge, huge)")
	f.StringVar(&o.imgType, "img-type", "", "image type filter (clipart, face, lineart, stock, photo, animated)")
	f.StringVar(&o.fileType, "file-type", "", "restrict results to a file extension (jpg, png, ...)")
	f.DurationVar(&o.timeout, "timeout", 0, "per-request timeout for searches and downloads")
	f.StringVar(&o.metricsFile, "metrics-file", "", "write Prometheus metrics to this file when the run ends")
	f.BoolVar(&o.metadata, "save-metadata", false, "write a JSON sidecar with result details next to each image")
	f.BoolVar(&o.notify, "notify", false, "send a desktop notification when the run ends")

	cmd.MarkFlagRequired("query")
}

// flagMap collects the flags the user set explicitly so that unset flags do
// not override config file or environment values.
func flagMap(cmd *cobra.Command, global *globalOptions, o *downloadOptions) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	strs := map[string]string{
		"api-key":      o.apiKey,
		"engine-id":    o.engineID,
		"output":       o.output,
		"strategy":     o.strategy,
		"safe":         o.safe,
		"img-size":     o.imgSize,
		"img-type":     o.imgType,
		"file-type":    o.fileType,
		"metrics-file": o.metricsFile,
	}
	for name, v := range strs {
		if changed(name) {
			flags[name] = v
		}
	}

	ints := map[string]int{
		"target":     o.target,
		"min-width":  o.minWidth,
		"min-height": o.minHeight,
		"max-pages":  o.maxPages,
	}
	for name, v := range ints {
		if changed(name) {
			flags[name] = v
		}
	}

	if changed("timeout") {
		flags["timeout"] = o.timeout
	}
	if changed("save-metadata") {
		flags["save-metadata"] = o.metadata
	}
	if global.logLevel != "" {
		flags["log-level"] = global.logLevel
	} else if global.verbose {
		flags["log-level"] = "debug"
	}

	return flags
}

func runDownload(cmd *cobra.Command, global *globalOptions, o *downloadOptions) error {
	cfg, err := config.Load(global.configFile, flagMap(cmd, global, o))
	if err != nil {
		ui.PrintError("Failed to load configuration", err)
		return &exitError{err: err}
	}

	// Progress output owns the terminal unless logs were asked for
	var console io.Writer = io.Discard
	if global.verbose || global.logLevel != "" {
		console = cmd.ErrOrStderr()
	}
	if err := logger.Initialize(&cfg.Logging, logger.Options{Console: console, NoColor: global.noColor}); err != nil {
		ui.PrintError("Failed to initialize logger", err)
		return &exitError{err: err}
	}
	log := logger.GetLogger()

	if global.verbose {
		ui.PrintBanner()
		ui.PrintInfo("Query", o.query)
		ui.PrintInfo("Output", cfg.Download.OutputDirectory)
		ui.PrintInfo("Target", fmt.Sprintf("%d", cfg.Download.Target))
		ui.PrintInfo("Strategy", cfg.Download.Strategy)
	}

	logger.LogComponentStart(log, "downloader", map[string]interface{}{
		"version":  version,
		"query":    o.query,
		"target":   cfg.Download.Target,
		"output":   cfg.Download.OutputDirectory,
		"strategy": cfg.Download.Strategy,
	})

	loop, m, err := buildLoop(cfg, log, o.query, global.verbose, cmd)
	if err != nil {
		ui.PrintError("Failed to initialize downloader", err)
		return &exitError{err: err}
	}
	progress := loop.reporter

	saved, runErr := loop.Run(cmd.Context(), o.query, cfg.Download.Target, cfg.Download.OutputDirectory)
	progress.Complete(saved)

	if err := m.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
		log.WithError(err).Warn("Failed to write metrics file")
		ui.PrintWarning("Failed to write metrics file", err)
	}

	if o.notify {
		if err := ui.NewNotifier().RunFinished(o.query, saved, runErr); err != nil {
			log.WithError(err).Debug("Desktop notification failed")
		}
	}

	if runErr != nil {
		log.WithError(runErr).WithField("saved", saved).Error("Download run aborted")
		if downloader.IsFatal(runErr) {
			// The progress reporter already printed the failure
			return &exitError{err: runErr}
		}
		if errors.Is(runErr, cmd.Context().Err()) {
			ui.PrintWarning("Interrupted")
			return &exitError{err: runErr}
		}
		return runErr
	}

	log.WithField("saved", saved).Info("Download run completed")
	return nil
}

// run bundles the loop with the progress reporter it reports to
type run struct {
	*downloader.Loop
	reporter *ui.Progress
}

func buildLoop(cfg *config.Config, log logger.Logger, query string, verbose bool, cmd *cobra.Command) (*run, *metrics.Metrics, error) {
	strategy, err := fetcher.StrategyFor(cfg.Download.Strategy, cfg.Download.JPEGQuality)
	if err != nil {
		return nil, nil, err
	}

	client := customsearch.NewClient(cfg.Search.APIKey, cfg.Search.EngineID,
		customsearch.WithBaseURL(cfg.Search.BaseURL),
		customsearch.WithHTTPClient(&http.Client{Timeout: cfg.Search.Timeout}),
		customsearch.WithSearchOptions(customsearch.SearchOptions{
			Safe:     cfg.Search.Safe,
			ImgSize:  cfg.Search.ImgSize,
			ImgType:  cfg.Search.ImgType,
			FileType: cfg.Search.FileType,
		}),
	)

	imageFetcher := fetcher.New(storage.NewManager(),
		fetcher.WithTimeout(cfg.Download.Timeout),
		fetcher.WithStrategy(strategy),
		fetcher.WithMaxBytes(cfg.Download.MaxFileSize),
		fetcher.WithUserAgent("gimgdl/"+version),
	)

	m := metrics.New()
	progress := ui.NewProgress(query, cfg.Download.Target, ui.ProgressOptions{
		Out:     cmd.OutOrStdout(),
		ErrOut:  cmd.ErrOrStderr(),
		Verbose: verbose,
	})

	loop := downloader.NewLoop(client, imageFetcher,
		downloader.WithReporter(progress),
		downloader.WithLogger(log),
		downloader.WithMetrics(m),
		downloader.WithMinSize(cfg.Download.MinWidth, cfg.Download.MinHeight),
		downloader.WithMaxPages(cfg.Download.MaxPages),
		downloader.WithMetadata(cfg.Download.SaveMetadata),
	)

	return &run{Loop: loop, reporter: progress}, m, nil
}
