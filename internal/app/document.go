package app

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/treedoc/internal/metrics"
	"github.com/dshills/treedoc/internal/model"
	"github.com/dshills/treedoc/internal/transform"
)

// DocumentResult is the outcome of processing one document.
type DocumentResult struct {
	// Path is the document file.
	Path string

	// Doc is the document after all steps, nil on failure.
	Doc *model.Node

	// Output is the encoded result, nil on failure.
	Output []byte

	// Steps is the number of steps applied.
	Steps int

	// Err is set when the document failed.
	Err error
}

// processDocument reads, decodes, transforms and encodes a single
// document.
func (app *Application) processDocument(log *logrus.Entry, sch *model.Schema, steps []transform.Step, path string) DocumentResult {
	app.metrics.DocumentsInFlight.Inc()
	defer app.metrics.DocumentsInFlight.Dec()

	log = log.WithField("doc", path)
	res := app.transformDocument(log, sch, steps, path)
	if res.Err != nil {
		app.metrics.ObserveDocument(metrics.StatusFailed)
		app.status.failed(path, res.Err)
		log.WithError(res.Err).Warn("document failed")
		return res
	}
	app.metrics.ObserveDocument(metrics.StatusOK)
	app.status.ok(path, res.Steps)
	log.WithField("steps", res.Steps).Debug("document done")
	return res
}

func (app *Application) transformDocument(log *logrus.Entry, sch *model.Schema, steps []transform.Step, path string) DocumentResult {
	res := DocumentResult{Path: path}

	data, err := app.fs.ReadFile(path)
	if err != nil {
		res.Err = NewOperationError("read", path, err)
		return res
	}
	doc, err := model.NodeFromJSON(sch, data)
	if err != nil {
		res.Err = NewOperationError("decode", path, err)
		return res
	}
	doc, err = app.applySteps(log, doc, steps)
	if err != nil {
		res.Err = NewOperationError("apply", path, err)
		return res
	}
	out, err := app.encode(doc)
	if err != nil {
		res.Err = NewOperationError("encode", path, err)
		return res
	}

	res.Doc = doc
	res.Output = out
	res.Steps = len(steps)
	return res
}

// applySteps applies steps in order and stops at the first failure.
func (app *Application) applySteps(log *logrus.Entry, doc *model.Node, steps []transform.Step) (*model.Node, error) {
	for i, step := range steps {
		start := time.Now()
		res := step.Apply(doc)
		app.metrics.ObserveStep(step.StepType(), res.Failed == "", time.Since(start))

		fields := logrus.Fields{"step": step.StepType(), "index": i}
		if res.Failed != "" {
			log.WithFields(fields).WithField("reason", res.Failed).Debug("step failed")
			return nil, &StepError{Index: i, StepType: step.StepType(), Reason: res.Failed}
		}
		log.WithFields(fields).Trace("step applied")
		doc = res.Doc
	}
	return doc, nil
}
