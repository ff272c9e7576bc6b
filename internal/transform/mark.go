package transform

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/treedoc/internal/model"
)

const (
	stepAddMark    = "addMark"
	stepRemoveMark = "removeMark"
)

// AddMarkStep adds Mark to the inline content in [From, To] wherever the
// parent node allows it.
type AddMarkStep struct {
	From int
	To   int
	Mark model.Mark
}

// NewAddMarkStep returns an add-mark step.
func NewAddMarkStep(from, to int, mark model.Mark) *AddMarkStep {
	return &AddMarkStep{From: from, To: to, Mark: mark}
}

// Apply implements Step.
func (s *AddMarkStep) Apply(doc *model.Node) StepResult {
	old, err := doc.Slice(s.From, s.To)
	if err != nil {
		return Fail(err.Error())
	}
	rFrom, err := doc.Resolve(s.From)
	if err != nil {
		return Fail(err.Error())
	}
	parent := rFrom.Node(rFrom.SharedDepth(s.To))
	content := mapInline(old.Content(), func(child, parent *model.Node) *model.Node {
		if (!child.IsLeaf() && !child.IsAtom()) || !parent.Type().AllowsMarkType(s.Mark.Type()) {
			return child
		}
		return child.WithMarks(s.Mark.AddToSet(child.Marks()))
	}, parent)
	return replaceMapped(doc, s.From, s.To, old, content)
}

// GetMap implements Step.
func (s *AddMarkStep) GetMap() StepMap { return EmptyStepMap }

// Invert implements Step.
func (s *AddMarkStep) Invert(*model.Node) (Step, error) {
	return NewRemoveMarkStep(s.From, s.To, s.Mark), nil
}

// StepType implements Step.
func (s *AddMarkStep) StepType() string { return stepAddMark }

// MarshalJSON implements Step.
func (s *AddMarkStep) MarshalJSON() ([]byte, error) {
	return marshalMarkStep(stepAddMark, s.From, s.To, s.Mark)
}

func (s *AddMarkStep) String() string {
	return fmt.Sprintf("addMark(%d, %d, %s)", s.From, s.To, s.Mark)
}

// RemoveMarkStep removes Mark from the inline content in [From, To].
type RemoveMarkStep struct {
	From int
	To   int
	Mark model.Mark
}

// NewRemoveMarkStep returns a remove-mark step.
func NewRemoveMarkStep(from, to int, mark model.Mark) *RemoveMarkStep {
	return &RemoveMarkStep{From: from, To: to, Mark: mark}
}

// Apply implements Step.
func (s *RemoveMarkStep) Apply(doc *model.Node) StepResult {
	old, err := doc.Slice(s.From, s.To)
	if err != nil {
		return Fail(err.Error())
	}
	content := mapInline(old.Content(), func(child, _ *model.Node) *model.Node {
		return child.WithMarks(s.Mark.RemoveFromSet(child.Marks()))
	}, doc)
	return replaceMapped(doc, s.From, s.To, old, content)
}

// GetMap implements Step.
func (s *RemoveMarkStep) GetMap() StepMap { return EmptyStepMap }

// Invert implements Step.
func (s *RemoveMarkStep) Invert(*model.Node) (Step, error) {
	return NewAddMarkStep(s.From, s.To, s.Mark), nil
}

// StepType implements Step.
func (s *RemoveMarkStep) StepType() string { return stepRemoveMark }

// MarshalJSON implements Step.
func (s *RemoveMarkStep) MarshalJSON() ([]byte, error) {
	return marshalMarkStep(stepRemoveMark, s.From, s.To, s.Mark)
}

func (s *RemoveMarkStep) String() string {
	return fmt.Sprintf("removeMark(%d, %d, %s)", s.From, s.To, s.Mark)
}

// mapInline rebuilds a fragment, passing every inline node and its parent
// through fn.
func mapInline(f model.Fragment, fn func(child, parent *model.Node) *model.Node, parent *model.Node) model.Fragment {
	mapped := make([]*model.Node, 0, f.ChildCount())
	f.ForEach(func(child *model.Node, _, _ int) {
		if child.Content().Size() > 0 {
			child = child.Copy(mapInline(child.Content(), fn, child))
		}
		if child.IsInline() {
			child = fn(child, parent)
		}
		mapped = append(mapped, child)
	})
	return model.NewFragment(mapped...)
}

func replaceMapped(doc *model.Node, from, to int, old model.Slice, content model.Fragment) StepResult {
	slice, err := model.NewSlice(content, old.OpenStart(), old.OpenEnd())
	if err != nil {
		return Fail(err.Error())
	}
	return FromReplace(doc, from, to, slice)
}

func marshalMarkStep(stepType string, from, to int, mark model.Mark) ([]byte, error) {
	return marshalStep(stepType, struct {
		Mark model.Mark `json:"mark"`
		From int        `json:"from"`
		To   int        `json:"to"`
	}{mark, from, to})
}

func decodeMarkStep(sch *model.Schema, r gjson.Result) (from, to int, mark model.Mark, err error) {
	if from, err = intField(r, "from"); err != nil {
		return
	}
	if to, err = intField(r, "to"); err != nil {
		return
	}
	mark, err = markField(sch, r, "mark")
	return
}

func decodeAddMark(sch *model.Schema, r gjson.Result) (Step, error) {
	from, to, mark, err := decodeMarkStep(sch, r)
	if err != nil {
		return nil, err
	}
	return NewAddMarkStep(from, to, mark), nil
}

func decodeRemoveMark(sch *model.Schema, r gjson.Result) (Step, error) {
	from, to, mark, err := decodeMarkStep(sch, r)
	if err != nil {
		return nil, err
	}
	return NewRemoveMarkStep(from, to, mark), nil
}
