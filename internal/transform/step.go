package transform

import (
	"fmt"
	"sync"

	"github.com/go-json-experiment/json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/treedoc/internal/model"
)

// Step is an atomic change to a document.
type Step interface {
	// Apply applies the step to doc. doc is never modified.
	Apply(doc *model.Node) StepResult

	// GetMap returns the position map of the step.
	GetMap() StepMap

	// Invert returns a step that undoes this one. doc is the document the
	// step was applied to.
	Invert(doc *model.Node) (Step, error)

	// StepType returns the "stepType" the step encodes with.
	StepType() string

	// MarshalJSON encodes the step including its stepType.
	MarshalJSON() ([]byte, error)
}

// StepResult is the outcome of applying a step: either Doc is set or Failed
// describes why the step could not be applied.
type StepResult struct {
	Doc    *model.Node
	Failed string
}

// OK returns a successful result.
func OK(doc *model.Node) StepResult {
	return StepResult{Doc: doc}
}

// Fail returns a failed result.
func Fail(msg string) StepResult {
	return StepResult{Failed: msg}
}

// FromReplace replaces [from, to] in doc with slice and wraps the outcome.
// Replace errors become failed results.
func FromReplace(doc *model.Node, from, to int, slice model.Slice) StepResult {
	out, err := doc.Replace(from, to, slice)
	if err != nil {
		return Fail(err.Error())
	}
	return OK(out)
}

// Decoder decodes the JSON object r into a step of a registered type.
type Decoder func(s *model.Schema, r gjson.Result) (Step, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Decoder{}
)

// Register adds a decoder for stepType. It panics if the type is already
// registered.
func Register(stepType string, dec Decoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[stepType]; dup {
		panic(fmt.Sprintf("transform: step type %q already registered", stepType))
	}
	registry[stepType] = dec
}

func init() {
	Register(stepReplace, decodeReplace)
	Register(stepReplaceAround, decodeReplaceAround)
	Register(stepAddMark, decodeAddMark)
	Register(stepRemoveMark, decodeRemoveMark)
}

// FromJSON decodes a step against schema.
func FromJSON(s *model.Schema, data []byte) (Step, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidStep)
	}
	return fromResult(s, gjson.ParseBytes(data))
}

// ListFromJSON decodes a JSON array of steps against schema.
func ListFromJSON(s *model.Schema, data []byte) ([]Step, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidStep)
	}
	r := gjson.ParseBytes(data)
	if !r.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of steps", ErrInvalidStep)
	}
	items := r.Array()
	steps := make([]Step, 0, len(items))
	for i, item := range items {
		step, err := fromResult(s, item)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func fromResult(s *model.Schema, r gjson.Result) (Step, error) {
	if !r.IsObject() {
		return nil, fmt.Errorf("%w: step must be an object", ErrInvalidStep)
	}
	stepType := r.Get("stepType")
	if stepType.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing stepType", ErrInvalidStep)
	}
	registryMu.RLock()
	dec, ok := registry[stepType.String()]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStepType, stepType.String())
	}
	return dec(s, r)
}

// ListToJSON encodes steps as a JSON array.
func ListToJSON(steps []Step) ([]byte, error) {
	out := []byte("[]")
	for i, step := range steps {
		data, err := step.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if out, err = sjson.SetRawBytes(out, "-1", data); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// marshalStep encodes fields and tags the object with stepType.
func marshalStep(stepType string, fields any) ([]byte, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(data, "stepType", stepType)
}

func intField(r gjson.Result, name string) (int, error) {
	v := r.Get(name)
	if v.Type != gjson.Number || v.Float() != float64(v.Int()) {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidStep, name)
	}
	return int(v.Int()), nil
}

func sliceField(s *model.Schema, r gjson.Result, name string) (model.Slice, error) {
	v := r.Get(name)
	if !v.Exists() {
		return model.EmptySlice, nil
	}
	slice, err := model.SliceFromJSON(s, []byte(v.Raw))
	if err != nil {
		return model.Slice{}, fmt.Errorf("%w: %s: %w", ErrInvalidStep, name, err)
	}
	return slice, nil
}

func markField(s *model.Schema, r gjson.Result, name string) (model.Mark, error) {
	v := r.Get(name)
	if !v.Exists() {
		return model.Mark{}, fmt.Errorf("%w: missing %s", ErrInvalidStep, name)
	}
	m, err := model.MarkFromJSON(s, []byte(v.Raw))
	if err != nil {
		return model.Mark{}, fmt.Errorf("%w: %s: %w", ErrInvalidStep, name, err)
	}
	return m, nil
}

// optionalSlice returns nil for the empty slice so it is left out of JSON.
func optionalSlice(s model.Slice) *model.Slice {
	if s.Size() == 0 && s.Content().Size() == 0 {
		return nil
	}
	return &s
}

func setStructure(data []byte) ([]byte, error) {
	return sjson.SetBytes(data, "structure", true)
}
