package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/treedoc/internal/metrics"
	"github.com/dshills/treedoc/internal/watcher"
)

// watch runs once, then reruns whenever the steps file, the schema file
// or a document changes, until ctx is done. Run failures are logged and do
// not stop watching.
func (app *Application) watch(ctx context.Context) error {
	w, err := watcher.New(
		watcher.WithDebounce(app.cfg.Watch.Debounce),
		watcher.WithBufferSize(app.cfg.Watch.Buffer),
	)
	if err != nil {
		return NewOperationError("start", "watcher", err)
	}
	defer w.Close()

	inputs := append([]string{}, app.opts.Files...)
	if app.cfg.Steps != "" {
		inputs = append(inputs, app.cfg.Steps)
	}
	if app.cfg.Schema != "" {
		inputs = append(inputs, app.cfg.Schema)
	}
	for _, path := range inputs {
		if err := w.Watch(path); err != nil {
			return NewOperationError("watch", path, err)
		}
	}

	if app.cfg.Metrics.Addr != "" {
		srv, err := metrics.StartServer(app.cfg.Metrics.Addr, app.metrics, app.logger)
		if err != nil {
			return NewOperationError("start", "metrics server", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	schemaPath := ""
	if app.cfg.Schema != "" {
		schemaPath, _ = filepath.Abs(app.cfg.Schema)
	}

	app.rerun(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			app.logger.WithFields(logrus.Fields{
				"path": ev.Path,
				"op":   ev.Op.String(),
			}).Info("input changed")
			app.status.changed(ev.Path)
			if ev.Path == schemaPath {
				app.schemas.Invalidate(app.cfg.Schema)
			}
			app.rerun(ctx)

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			app.logger.WithError(err).Warn("watcher error")
		}
	}
}

func (app *Application) rerun(ctx context.Context) {
	if _, err := app.RunOnce(ctx); err != nil && ctx.Err() == nil {
		app.status.failed("run", err)
		app.logger.WithError(err).Error("run failed")
	}
}
