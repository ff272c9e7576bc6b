// Package app runs treedoc: it applies a list of steps to a batch of JSON
// documents, writes the results, and in watch mode reruns whenever one of
// the input files changes.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/treedoc/internal/config"
	"github.com/dshills/treedoc/internal/config/loader"
	"github.com/dshills/treedoc/internal/logging"
	"github.com/dshills/treedoc/internal/metrics"
	"github.com/dshills/treedoc/internal/model"
	"github.com/dshills/treedoc/internal/schema"
	"github.com/dshills/treedoc/internal/transform"
)

// Options configures the application.
type Options struct {
	// Config holds the run settings. Nil uses config.Default().
	Config *config.Config

	// Files are the documents to process.
	Files []string

	// Logger receives structured logs. Nil discards them.
	Logger *logrus.Logger

	// Stdout receives results when no output directory is configured.
	Stdout io.Writer

	// Stderr receives per-document status lines.
	Stderr io.Writer

	// FS is where documents, steps and schema files are read from.
	FS loader.FileSystem

	// NoColor disables colored status lines.
	NoColor bool
}

// Application applies steps to documents.
type Application struct {
	opts    Options
	cfg     *config.Config
	logger  *logrus.Logger
	fs      loader.FileSystem
	schemas *schema.Registry
	metrics *metrics.Metrics
	status  *statusPrinter

	outMu sync.Mutex
}

// New creates an Application with the given options.
func New(opts Options) (*Application, error) {
	if len(opts.Files) == 0 {
		return nil, ErrNoDocuments
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if err := checkOutputs(opts.Config.Out, opts.Files, opts.Config.Steps, opts.Config.Schema); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.FS == nil {
		opts.FS = loader.DefaultFS()
	}

	return &Application{
		opts:    opts,
		cfg:     opts.Config,
		logger:  opts.Logger,
		fs:      opts.FS,
		schemas: schema.NewRegistry(opts.FS),
		metrics: metrics.New(nil),
		status:  newStatusPrinter(opts.Stderr, opts.NoColor),
	}, nil
}

// Metrics returns the collectors updated by the application.
func (app *Application) Metrics() *metrics.Metrics {
	return app.metrics
}

// Run processes the documents once, or keeps reprocessing them on change
// in watch mode until ctx is done. A single run fails with
// ErrDocumentsFailed when any document failed.
func (app *Application) Run(ctx context.Context) error {
	if app.cfg.Watch.Enabled {
		return app.watch(ctx)
	}
	report, err := app.RunOnce(ctx)
	if err != nil {
		return err
	}
	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%w: %d of %d", ErrDocumentsFailed, n, len(report.Results))
	}
	return nil
}

// Report is the outcome of one run.
type Report struct {
	RunID    string
	Results  []DocumentResult
	Duration time.Duration
}

// Failed returns the number of documents that failed.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Err returns the document errors of the run, or nil.
func (r *Report) Err() error {
	var list ErrorList
	for _, res := range r.Results {
		list.Add(res.Err)
	}
	return list.AsError()
}

// RunOnce loads the schema and steps, processes every document and writes
// the results. Document failures are reported in the Report; the returned
// error is reserved for failures that stop the whole run.
func (app *Application) RunOnce(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	log := app.logger.WithField("run_id", report.RunID)

	sch, err := app.schemas.Get(app.cfg.Schema)
	if err != nil {
		return nil, NewOperationError("load schema", app.cfg.Schema, err)
	}
	steps, err := app.loadSteps(sch)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"documents": len(app.opts.Files),
		"steps":     len(steps),
	}).Info("run started")

	report.Results = make([]DocumentResult, len(app.opts.Files))
	var g errgroup.Group
	g.SetLimit(app.cfg.Concurrency)
	for i, path := range app.opts.Files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				report.Results[i] = DocumentResult{Path: path, Err: err}
				return nil
			}
			report.Results[i] = app.processDocument(log, sch, steps, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := app.writeResults(report.Results); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	app.metrics.ObserveRun(report.Duration)
	app.status.summary(len(report.Results), report.Failed())
	log.WithFields(logrus.Fields{
		"failed":   report.Failed(),
		"duration": report.Duration,
	}).Info("run finished")
	return report, nil
}

// loadSteps reads the configured steps file. No file means no steps.
func (app *Application) loadSteps(sch *model.Schema) ([]transform.Step, error) {
	if app.cfg.Steps == "" {
		return nil, nil
	}
	data, err := app.fs.ReadFile(app.cfg.Steps)
	if err != nil {
		return nil, NewOperationError("read steps", app.cfg.Steps, err)
	}
	steps, err := transform.ListFromJSON(sch, data)
	if err != nil {
		return nil, NewOperationError("decode steps", app.cfg.Steps, err)
	}
	return steps, nil
}
