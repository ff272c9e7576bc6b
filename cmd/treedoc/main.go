// Package main is the entry point for treedoc, which applies document
// transform steps to JSON documents.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/dshills/treedoc/internal/app"
	"github.com/dshills/treedoc/internal/config"
	"github.com/dshills/treedoc/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// cliFlags holds the parsed command line. Only flags that were set
// override the configuration.
type cliFlags struct {
	configPath  string
	schema      string
	steps       string
	out         string
	pretty      bool
	logLevel    string
	logFormat   string
	logErrors   string
	concurrency int
	watch       bool
	metricsAddr string
	noColor     bool
	showVersion bool

	set   map[string]bool
	files []string
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	f := &cliFlags{set: map[string]bool{}}
	fs := flag.NewFlagSet("treedoc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.configPath, "config", "", "Path to configuration file (TOML, YAML or JSON)")
	fs.StringVar(&f.schema, "schema", "", "Path to schema definition file (default: built-in schema)")
	fs.StringVar(&f.steps, "steps", "", "Path to JSON array of steps to apply")
	fs.StringVar(&f.out, "out", "", "Directory to write results to (default: stdout)")
	fs.BoolVar(&f.pretty, "pretty", false, "Indent JSON output")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", "text", "Log format (text, json)")
	fs.StringVar(&f.logErrors, "log-errors", "", "Append warnings and errors to this file instead of stderr")
	fs.IntVar(&f.concurrency, "j", 4, "Number of documents processed at once")
	fs.BoolVar(&f.watch, "watch", false, "Rerun when an input file changes")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address in watch mode")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored status output")
	fs.BoolVar(&f.showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "treedoc - apply transform steps to JSON documents\n\n")
		fmt.Fprintf(stderr, "Usage: treedoc [options] doc.json...\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  treedoc -steps steps.json doc.json         Print the transformed document\n")
		fmt.Fprintf(stderr, "  treedoc -schema notes.toml -out dist *.json Write results to dist/\n")
		fmt.Fprintf(stderr, "  treedoc -watch -steps steps.json doc.json  Rerun on every change\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	f.files = fs.Args()
	return f, nil
}

// apply overrides cfg with the flags that were given.
func (f *cliFlags) apply(cfg *config.Config) {
	if f.set["schema"] {
		cfg.Schema = f.schema
	}
	if f.set["steps"] {
		cfg.Steps = f.steps
	}
	if f.set["out"] {
		cfg.Out = f.out
	}
	if f.set["pretty"] {
		cfg.Pretty = f.pretty
	}
	if f.set["log-level"] {
		cfg.Log.Level = f.logLevel
	}
	if f.set["log-format"] {
		cfg.Log.Format = f.logFormat
	}
	if f.set["log-errors"] {
		cfg.Log.ErrorFile = f.logErrors
	}
	if f.set["j"] {
		cfg.Concurrency = f.concurrency
	}
	if f.set["watch"] {
		cfg.Watch.Enabled = f.watch
	}
	if f.set["metrics-addr"] {
		cfg.Metrics.Addr = f.metricsAddr
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	flags, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if flags.showVersion {
		fmt.Fprintf(stdout, "treedoc %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	errColor := color.New(color.FgRed, color.Bold)
	if flags.noColor {
		errColor.DisableColor()
	}
	fail := func(format string, a ...any) int {
		fmt.Fprintf(stderr, "%s %s\n", errColor.Sprint("Error:"), fmt.Sprintf(format, a...))
		return 1
	}

	var opts []config.Option
	if flags.configPath != "" {
		opts = append(opts, config.WithFile(flags.configPath))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return fail("%v", err)
	}
	flags.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fail("invalid configuration: %v", err)
	}

	logOpts := []logging.Option{logging.WithOutput(stderr)}
	if cfg.Log.ErrorFile != "" {
		errFile, err := os.OpenFile(cfg.Log.ErrorFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fail("opening error log: %v", err)
		}
		defer errFile.Close()
		logOpts = append(logOpts, logging.WithErrorOutput(errFile))
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, logOpts...)
	if err != nil {
		return fail("%v", err)
	}

	application, err := app.New(app.Options{
		Config:  cfg,
		Files:   flags.files,
		Logger:  logger,
		Stdout:  stdout,
		Stderr:  stderr,
		NoColor: flags.noColor,
	})
	if err != nil {
		if errors.Is(err, app.ErrNoDocuments) {
			fmt.Fprintln(stderr, "Usage: treedoc [options] doc.json...")
		}
		return fail("failed to initialize: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	err = application.Run(ctx)
	logger.WithField("elapsed", time.Since(start)).Debug("exiting")
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 1
		}
		return fail("%v", err)
	}
	return 0
}
