package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	. "github.com/dshills/treedoc/internal/builder"
	"github.com/dshills/treedoc/internal/model"
	"github.com/dshills/treedoc/internal/schema"
)

func TestStepToJSON(t *testing.T) {
	em := mustMark(t, "em", nil)
	tests := []struct {
		name string
		step Step
		want string
	}{
		{
			name: "replace",
			step: NewReplaceStep(13, 13, Slice(0, 0, "?"), false),
			want: `{"stepType":"replace","from":13,"to":13,"slice":{"content":[{"type":"text","text":"?"}]}}`,
		},
		{
			name: "replace deletion",
			step: NewReplaceStep(2, 4, model.EmptySlice, true),
			want: `{"stepType":"replace","from":2,"to":4,"structure":true}`,
		},
		{
			name: "open slice",
			step: NewReplaceStep(2, 2, Slice(1, 1, P(), P()), false),
			want: `{"stepType":"replace","from":2,"to":2,"slice":{"content":[{"type":"paragraph"},{"type":"paragraph"}],"openStart":1,"openEnd":1}}`,
		},
		{
			name: "replace around",
			step: NewReplaceAroundStep(8, 27, 9, 26, Slice(0, 0, CodeBlock("")), 1, true),
			want: `{"stepType":"replaceAround","from":8,"to":27,"gapFrom":9,"gapTo":26,"insert":1,"slice":{"content":[{"type":"code_block","attrs":{"language":null}}]},"structure":true}`,
		},
		{
			name: "add mark",
			step: NewAddMarkStep(7, 12, em),
			want: `{"stepType":"addMark","mark":{"type":"em"},"from":7,"to":12}`,
		},
		{
			name: "remove mark",
			step: NewRemoveMarkStep(7, 12, em),
			want: `{"stepType":"removeMark","mark":{"type":"em"},"from":7,"to":12}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.step.MarshalJSON()
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
			assert.Equal(t, tt.step.StepType(), gjson.GetBytes(data, "stepType").String())

			back, err := FromJSON(schema.Default(), data)
			require.NoError(t, err)
			again, err := back.MarshalJSON()
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(again))
		})
	}
}

func TestStepListJSON(t *testing.T) {
	input := `[
		{"stepType":"replace","from":13,"to":13,"slice":{"content":[{"type":"text","text":"?"}]}},
		{"stepType":"addMark","mark":{"type":"strong"},"from":1,"to":6}
	]`
	steps, err := ListFromJSON(schema.Default(), []byte(input))
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.IsType(t, &ReplaceStep{}, steps[0])
	assert.IsType(t, &AddMarkStep{}, steps[1])

	doc := Doc(P("Hello World!"))
	for _, step := range steps {
		doc = applyStep(t, doc, step)
	}
	assert.True(t, doc.Eq(Doc(P(Strong("Hello"), " World!?"))), "got %s", doc)

	data, err := ListToJSON(steps)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(data))

	empty, err := ListToJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestStepFromJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
		msg   string
	}{
		{"malformed", `{"stepType":`, ErrInvalidStep, "malformed"},
		{"not an object", `[1]`, ErrInvalidStep, "object"},
		{"missing stepType", `{"from":1,"to":2}`, ErrInvalidStep, "stepType"},
		{"unknown stepType", `{"stepType":"split","pos":1}`, ErrUnknownStepType, "split"},
		{"missing from", `{"stepType":"replace","to":2}`, ErrInvalidStep, "from"},
		{"fractional to", `{"stepType":"replace","from":1,"to":2.5}`, ErrInvalidStep, "to must be an integer"},
		{"string position", `{"stepType":"replaceAround","from":1,"to":5,"gapFrom":"2","gapTo":3,"insert":0}`, ErrInvalidStep, "gapFrom"},
		{"bad slice", `{"stepType":"replace","from":1,"to":1,"slice":{"content":[{"type":"nope"}]}}`, model.ErrSchemaValidation, "nope"},
		{"missing mark", `{"stepType":"addMark","from":1,"to":2}`, ErrInvalidStep, "mark"},
		{"unknown mark", `{"stepType":"removeMark","mark":{"type":"blink"},"from":1,"to":2}`, model.ErrSchemaValidation, "blink"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, err := FromJSON(schema.Default(), []byte(tt.input))
			require.Error(t, err)
			assert.Nil(t, step)
			assert.True(t, errors.Is(err, tt.want), "error %v is not %v", err, tt.want)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestStepListFromJSONErrors(t *testing.T) {
	_, err := ListFromJSON(schema.Default(), []byte(`{"stepType":"replace"}`))
	assert.ErrorIs(t, err, ErrInvalidStep)

	_, err = ListFromJSON(schema.Default(), []byte(`[{"stepType":"replace","from":1,"to":1},{"stepType":"wrap"}]`))
	assert.ErrorIs(t, err, ErrUnknownStepType)
	assert.Contains(t, err.Error(), "step 1")
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(stepReplace, decodeReplace)
	})
}
