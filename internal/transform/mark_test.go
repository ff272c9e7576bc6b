package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/dshills/treedoc/internal/builder"
	"github.com/dshills/treedoc/internal/model"
	"github.com/dshills/treedoc/internal/schema"
)

func mustMark(t *testing.T, name string, attrs model.Attrs) model.Mark {
	t.Helper()
	m, err := schema.Default().Mark(name, attrs)
	require.NoError(t, err)
	return m
}

func TestAddMarkFromJSON(t *testing.T) {
	doc := Doc(P("Hello World!"))
	step, err := FromJSON(schema.Default(),
		[]byte(`{"stepType":"addMark","mark":{"type":"em"},"from":7,"to":12}`))
	require.NoError(t, err)

	out := applyStep(t, doc, step)
	assert.True(t, out.Eq(Doc(P("Hello ", Em("World"), "!"))), "got %s", out)
}

func TestRemoveMarkFromJSON(t *testing.T) {
	doc := Doc(P("Hello ", Em("World"), "!"))
	step, err := FromJSON(schema.Default(),
		[]byte(`{"stepType":"removeMark","mark":{"type":"em"},"from":7,"to":12}`))
	require.NoError(t, err)

	out := applyStep(t, doc, step)
	assert.True(t, out.Eq(Doc(P("Hello World!"))), "got %s", out)
}

func TestMarkSteps(t *testing.T) {
	em := mustMark(t, "em", nil)
	strong := mustMark(t, "strong", nil)
	link := mustMark(t, "link", model.Attrs{"href": "https://example.com"})

	tests := []struct {
		name string
		doc  *model.Node
		step Step
		want *model.Node
	}{
		{
			name: "add across paragraphs",
			doc:  Doc(P("ab"), P("cd")),
			step: NewAddMarkStep(2, 6, strong),
			want: Doc(P("a", Strong("b")), P(Strong("c"), "d")),
		},
		{
			name: "add to partially marked text",
			doc:  Doc(P("a", Em("bc"), "d")),
			step: NewAddMarkStep(1, 5, em),
			want: Doc(P(Em("abcd"))),
		},
		{
			name: "add keeps other marks",
			doc:  Doc(P(Strong("abc"))),
			step: NewAddMarkStep(2, 3, link),
			want: Doc(P(Strong("a", Link("https://example.com", "b"), "c"))),
		},
		{
			name: "add marks inline leaves",
			doc:  Doc(P("a", BR(), "b")),
			step: NewAddMarkStep(1, 4, em),
			want: Doc(P(Em("a", BR(), "b"))),
		},
		{
			name: "code block rejects marks",
			doc:  Doc(CodeBlock("abc")),
			step: NewAddMarkStep(1, 4, em),
			want: Doc(CodeBlock("abc")),
		},
		{
			name: "remove from part of a mark",
			doc:  Doc(P(Em("abcd"))),
			step: NewRemoveMarkStep(2, 4, em),
			want: Doc(P(Em("a"), "bc", Em("d"))),
		},
		{
			name: "remove absent mark",
			doc:  Doc(P("abc")),
			step: NewRemoveMarkStep(1, 4, strong),
			want: Doc(P("abc")),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := applyStep(t, tt.doc, tt.step)
			assert.True(t, out.Eq(tt.want), "got %s, want %s", out, tt.want)
			assert.Equal(t, tt.doc.NodeSize(), out.NodeSize())
		})
	}
}

func TestMarkStepInvert(t *testing.T) {
	em := mustMark(t, "em", nil)
	doc := Doc(P("Hello World!"))
	step := NewAddMarkStep(7, 12, em)
	checkInvert(t, doc, step)

	inv, err := step.Invert(doc)
	require.NoError(t, err)
	assert.Equal(t, stepRemoveMark, inv.StepType())

	marked := applyStep(t, doc, step)
	checkInvert(t, marked, NewRemoveMarkStep(7, 12, em))
}

func TestMarkStepFailure(t *testing.T) {
	em := mustMark(t, "em", nil)
	res := NewAddMarkStep(0, 100, em).Apply(Doc(P("a")))
	assert.Nil(t, res.Doc)
	assert.NotEmpty(t, res.Failed)
}
