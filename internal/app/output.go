package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fatih/color"
	"github.com/tidwall/pretty"

	"github.com/dshills/treedoc/internal/model"
)

var prettyOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: true,
}

// encode returns the JSON form of doc with object keys sorted, indented
// when pretty output is configured.
func (app *Application) encode(doc *model.Node) ([]byte, error) {
	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	sorted := pretty.PrettyOptions(data, prettyOptions)
	if app.cfg.Pretty {
		return sorted, nil
	}
	return append(pretty.Ugly(sorted), '\n'), nil
}

// writeResults writes successful results in input order, to the output
// directory when one is configured and to stdout otherwise.
func (app *Application) writeResults(results []DocumentResult) error {
	app.outMu.Lock()
	defer app.outMu.Unlock()

	if app.cfg.Out == "" {
		for _, res := range results {
			if res.Err != nil {
				continue
			}
			if _, err := app.opts.Stdout.Write(res.Output); err != nil {
				return NewOperationError("write", "stdout", err)
			}
		}
		return nil
	}

	if err := os.MkdirAll(app.cfg.Out, 0o755); err != nil {
		return NewOperationError("create", app.cfg.Out, err)
	}
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		dst := outputPath(app.cfg.Out, res.Path)
		if err := writeFileAtomic(dst, res.Output); err != nil {
			return NewOperationError("write", dst, err)
		}
	}
	return nil
}

// outputPath returns where the result for the document at path is written.
func outputPath(out, path string) string {
	return filepath.Join(out, filepath.Base(path))
}

// checkOutputs fails when two documents would be written to the same file,
// or when a result would overwrite one of the inputs.
func checkOutputs(out string, files []string, inputs ...string) error {
	if out == "" {
		return nil
	}
	read := make(map[string]string, len(files)+len(inputs))
	for _, path := range append(slices.Clone(files), inputs...) {
		if path != "" {
			read[absPath(path)] = path
		}
	}
	written := make(map[string]string, len(files))
	for _, path := range files {
		dst := absPath(outputPath(out, path))
		if prev, ok := written[dst]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrOutputConflict, prev, path, dst)
		}
		if input, ok := read[dst]; ok {
			return fmt.Errorf("%w: result of %s would overwrite input %s", ErrOutputConflict, path, input)
		}
		written[dst] = path
	}
	return nil
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// statusPrinter writes one colored line per document. It is safe for
// concurrent use.
type statusPrinter struct {
	mu   sync.Mutex
	w    io.Writer
	good *color.Color
	bad  *color.Color
	note *color.Color
}

func newStatusPrinter(w io.Writer, noColor bool) *statusPrinter {
	p := &statusPrinter{
		w:    w,
		good: color.New(color.FgGreen, color.Bold),
		bad:  color.New(color.FgRed, color.Bold),
		note: color.New(color.FgYellow),
	}
	if noColor {
		p.good.DisableColor()
		p.bad.DisableColor()
		p.note.DisableColor()
	}
	return p
}

func (p *statusPrinter) ok(path string, steps int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s (%d steps)\n", p.good.Sprint("ok  "), path, steps)
}

func (p *statusPrinter) failed(path string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s: %v\n", p.bad.Sprint("FAIL"), path, err)
}

func (p *statusPrinter) changed(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", p.note.Sprint("changed"), path)
}

func (p *statusPrinter) summary(total, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.good
	if failed > 0 {
		c = p.bad
	}
	fmt.Fprintf(p.w, "%s\n", c.Sprintf("%d documents, %d failed", total, failed))
}
