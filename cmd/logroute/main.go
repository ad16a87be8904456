// Package main provides the CLI entry point for logroute, a demo driver that
// routes log records to console, plain-text, and HTML facilities.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"charm.land/log/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"go.jacobcolvin.com/logroute"
	"go.jacobcolvin.com/logroute/version"
)

type options struct {
	configPath string
	outputDir  string
	mockStream bool
	interval   time.Duration
	count      int
}

func main() {
	cfg := logroute.NewConfig()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "logroute [flags]",
		Short: "Route demo log records to console, plain-text, and HTML facilities",
		Long: `logroute drives a log router that fans records out to a colorized console,
a rotating plain-text log file, and streaming HTML log files. It registers one
facility of each kind under an output directory, emits a set of demo records,
and can keep emitting a synthetic event stream until interrupted.`,
		Args:          cobra.NoArgs,
		Version:       version.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg, opts)
		},
	}

	cfg.RegisterFlags(rootCmd.Flags())

	rootCmd.Flags().StringVar(&opts.configPath, "config", "",
		"YAML configuration file; explicit flags take precedence")
	rootCmd.Flags().StringVar(&opts.outputDir, "output-dir", "logs",
		"directory for file and HTML facilities")
	rootCmd.Flags().BoolVar(&opts.mockStream, "mock-stream", false,
		"emit a synthetic event stream until interrupted")
	rootCmd.Flags().DurationVar(&opts.interval, "interval", 250*time.Millisecond,
		"delay between mock stream events")
	rootCmd.Flags().IntVar(&opts.count, "count", 0,
		"stop the mock stream after this many events (0 for unlimited)")

	completionErr := cfg.RegisterCompletions(rootCmd)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	rootCmd.AddCommand(newSchemaCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for the YAML configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			out, err := json.MarshalIndent(logroute.ConfigSchema(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling schema: %w", err)
			}

			fmt.Println(string(out))

			return nil
		},
	}
}

func run(cmd *cobra.Command, cfg *logroute.Config, opts *options) error {
	clog := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "logroute",
	})

	cfg, err := resolveConfig(cmd, cfg, opts)
	if err != nil {
		return err
	}

	router, err := logroute.Configure(cfg)
	if err != nil {
		return err
	}

	err = registerFacilities(router, opts)
	if err != nil {
		return err
	}

	err = router.LogAvailableFacilities()
	if err != nil {
		return err
	}

	emitDemo(router)

	if opts.mockStream {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		streamEvents(ctx, router, opts.interval, opts.count)
	}

	stats := router.ThrottleStats()
	if stats.DroppedTotal > 0 {
		clog.Warn("throttle dropped writes", "total", stats.DroppedTotal)
	}

	return nil
}

// resolveConfig layers the optional YAML file under the CLI flags: file
// values apply only where the corresponding flag was not set explicitly.
func resolveConfig(cmd *cobra.Command, cfg *logroute.Config, opts *options) (*logroute.Config, error) {
	if opts.configPath != "" {
		fileCfg, err := logroute.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}

		fileCfg.Flags = cfg.Flags
		applyChangedFlags(cmd, fileCfg, cfg)
		cfg = fileCfg
	}

	if !cmd.Flags().Changed(cfg.Flags.Color) {
		cfg.Color = term.IsTerminal(int(os.Stdout.Fd()))
	}

	return cfg, nil
}

func applyChangedFlags(cmd *cobra.Command, dst, src *logroute.Config) {
	changed := cmd.Flags().Changed

	if changed(src.Flags.Level) {
		dst.Level = src.Level
	}

	if changed(src.Flags.Color) {
		dst.Color = src.Color
	}

	if changed(src.Flags.MaxMessageLength) {
		dst.MaxMessageLength = src.MaxMessageLength
	}

	if changed(src.Flags.MaxMessageLines) {
		dst.MaxMessageLines = src.MaxMessageLines
	}

	if changed(src.Flags.MaxLineLength) {
		dst.MaxLineLength = src.MaxLineLength
	}

	if changed(src.Flags.MaxLogHandlesPerCall) {
		dst.MaxLogHandlesPerCall = src.MaxLogHandlesPerCall
	}

	if changed(src.Flags.ColorizeTimeout) {
		dst.ColorizeTimeout = src.ColorizeTimeout
	}

	if changed(src.Flags.MaxHTMLDocumentBytes) {
		dst.MaxHTMLDocumentBytes = src.MaxHTMLDocumentBytes
	}

	if changed(src.Flags.MaxHTMLTitleLength) {
		dst.MaxHTMLTitleLength = src.MaxHTMLTitleLength
	}

	if changed(src.Flags.MaxWritesPerWindow) {
		dst.MaxWritesPerWindow = src.MaxWritesPerWindow
	}

	if changed(src.Flags.ThrottleWindow) {
		dst.ThrottleWindow = src.ThrottleWindow
	}

	if changed(src.Flags.PlainMaxFileSize) {
		dst.PlainMaxFileSize = src.PlainMaxFileSize
	}
}

func registerFacilities(router *logroute.Router, opts *options) error {
	err := router.AddLogFile("app", logroute.FileConfig{
		Path:            filepath.Join(opts.outputDir, "app.log"),
		RotateOnStart:   true,
		RotationsToKeep: 3,
	})
	if err != nil {
		return fmt.Errorf("registering plain log facility: %w", err)
	}

	err = router.AddHTMLLogFile("report", logroute.HTMLConfig{
		Path:                filepath.Join(opts.outputDir, "report.html"),
		Title:               "logroute demo",
		Theme:               logroute.ThemeDark,
		AutoRefresh:         opts.mockStream,
		AutoRefreshInterval: time.Second,
		RotateOnStart:       true,
		RotationsToKeep:     2,
	})
	if err != nil {
		return fmt.Errorf("registering HTML facility: %w", err)
	}

	err = router.AddHTMLLogFile("report_light", logroute.HTMLConfig{
		Path:            filepath.Join(opts.outputDir, "report-light.html"),
		Title:           "logroute demo (light)",
		Theme:           logroute.ThemeLight,
		RotateOnStart:   true,
		RotationsToKeep: 2,
	})
	if err != nil {
		return fmt.Errorf("registering light HTML facility: %w", err)
	}

	return nil
}

func emitDemo(router *logroute.Router) {
	_ = router.Debug("resolver cache warmed entries=412 hit_rate=0.97")
	_ = router.Info(`listener ready addr="0.0.0.0:8443" proto=h2`)
	_ = router.Log("pipeline started workers=8 queue_depth=128",
		logroute.LevelInfo, "startup", nil)
	_ = router.Warning("disk usage at 91% on /var, pruning oldest snapshots")
	_ = router.Error("upstream handshake failed peer=10.4.1.17:9300 attempt=3")
	_ = router.Log("config reloaded\nsources=2 overrides=5\nnext_check=60s",
		logroute.LevelInfo, "config", nil)
}

var streamTemplates = []struct {
	level   logroute.Level
	nature  string
	message string
}{
	{logroute.LevelInfo, "ingest", `batch accepted id=%d records=240 lag="1.2s"`},
	{logroute.LevelDebug, "ingest", "checkpoint advanced offset=%d segment=wal-0042"},
	{logroute.LevelInfo, "query", `scan finished rows=%d cost=0.031 plan="index-only"`},
	{logroute.LevelWarning, "compaction", "level spill tier=2 pending=%d backoff=500ms"},
	{logroute.LevelError, "replication", "follower timeout node=store-%d retries=4"},
}

func streamEvents(ctx context.Context, router *logroute.Router, interval time.Duration, count int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; count <= 0 || i < count; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		tmpl := streamTemplates[i%len(streamTemplates)]
		_ = router.Log(fmt.Sprintf(tmpl.message, i+1), tmpl.level, tmpl.nature, nil)
	}
}
