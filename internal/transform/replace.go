package transform

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/treedoc/internal/model"
)

const (
	stepReplace       = "replace"
	stepReplaceAround = "replaceAround"
)

// ReplaceStep replaces [From, To] with Slice. With Structure set the step
// fails rather than overwrite content: the range may only cover node
// boundaries.
type ReplaceStep struct {
	From      int
	To        int
	Slice     model.Slice
	Structure bool
}

// NewReplaceStep returns a replace step.
func NewReplaceStep(from, to int, slice model.Slice, structure bool) *ReplaceStep {
	return &ReplaceStep{From: from, To: to, Slice: slice, Structure: structure}
}

// Apply implements Step.
func (s *ReplaceStep) Apply(doc *model.Node) StepResult {
	if s.Structure {
		covers, err := doc.ContentBetween(s.From, s.To)
		if err != nil {
			return Fail(err.Error())
		}
		if covers {
			return Fail("structure replace would overwrite content")
		}
	}
	return FromReplace(doc, s.From, s.To, s.Slice)
}

// GetMap implements Step.
func (s *ReplaceStep) GetMap() StepMap {
	return NewStepMap(s.From, s.To-s.From, s.Slice.Size())
}

// Invert implements Step.
func (s *ReplaceStep) Invert(doc *model.Node) (Step, error) {
	removed, err := doc.Slice(s.From, s.To)
	if err != nil {
		return nil, fmt.Errorf("invert replace: %w", err)
	}
	return NewReplaceStep(s.From, s.From+s.Slice.Size(), removed, false), nil
}

// StepType implements Step.
func (s *ReplaceStep) StepType() string { return stepReplace }

// MarshalJSON implements Step.
func (s *ReplaceStep) MarshalJSON() ([]byte, error) {
	data, err := marshalStep(stepReplace, struct {
		From  int          `json:"from"`
		To    int          `json:"to"`
		Slice *model.Slice `json:"slice,omitempty"`
	}{s.From, s.To, optionalSlice(s.Slice)})
	if err != nil || !s.Structure {
		return data, err
	}
	return setStructure(data)
}

func (s *ReplaceStep) String() string {
	return fmt.Sprintf("replace(%d, %d, %s)", s.From, s.To, s.Slice)
}

func decodeReplace(sch *model.Schema, r gjson.Result) (Step, error) {
	from, err := intField(r, "from")
	if err != nil {
		return nil, err
	}
	to, err := intField(r, "to")
	if err != nil {
		return nil, err
	}
	slice, err := sliceField(sch, r, "slice")
	if err != nil {
		return nil, err
	}
	return NewReplaceStep(from, to, slice, r.Get("structure").Bool()), nil
}

// ReplaceAroundStep replaces [From, To] with Slice while preserving the
// content in [GapFrom, GapTo], which is moved into Slice at offset Insert.
type ReplaceAroundStep struct {
	From      int
	To        int
	GapFrom   int
	GapTo     int
	Insert    int
	Slice     model.Slice
	Structure bool
}

// NewReplaceAroundStep returns a replace-around step.
func NewReplaceAroundStep(from, to, gapFrom, gapTo int, slice model.Slice, insert int, structure bool) *ReplaceAroundStep {
	return &ReplaceAroundStep{
		From:      from,
		To:        to,
		GapFrom:   gapFrom,
		GapTo:     gapTo,
		Insert:    insert,
		Slice:     slice,
		Structure: structure,
	}
}

// Apply implements Step.
func (s *ReplaceAroundStep) Apply(doc *model.Node) StepResult {
	out, err := doc.ReplaceAround(s.From, s.To, s.GapFrom, s.GapTo, s.Insert, s.Slice, s.Structure)
	if err != nil {
		return Fail(err.Error())
	}
	return OK(out)
}

// GetMap implements Step.
func (s *ReplaceAroundStep) GetMap() StepMap {
	return NewStepMap(
		s.From, s.GapFrom-s.From, s.Insert,
		s.GapTo, s.To-s.GapTo, s.Slice.Size()-s.Insert,
	)
}

// Invert implements Step.
func (s *ReplaceAroundStep) Invert(doc *model.Node) (Step, error) {
	gap := s.GapTo - s.GapFrom
	removed, err := doc.Slice(s.From, s.To)
	if err != nil {
		return nil, fmt.Errorf("invert replace around: %w", err)
	}
	removed, err = removed.RemoveBetween(s.GapFrom-s.From, s.GapTo-s.From)
	if err != nil {
		return nil, fmt.Errorf("invert replace around: %w", err)
	}
	return NewReplaceAroundStep(
		s.From, s.From+s.Slice.Size()+gap,
		s.From+s.Insert, s.From+s.Insert+gap,
		removed, s.GapFrom-s.From, s.Structure,
	), nil
}

// StepType implements Step.
func (s *ReplaceAroundStep) StepType() string { return stepReplaceAround }

// MarshalJSON implements Step.
func (s *ReplaceAroundStep) MarshalJSON() ([]byte, error) {
	data, err := marshalStep(stepReplaceAround, struct {
		From    int          `json:"from"`
		To      int          `json:"to"`
		GapFrom int          `json:"gapFrom"`
		GapTo   int          `json:"gapTo"`
		Insert  int          `json:"insert"`
		Slice   *model.Slice `json:"slice,omitempty"`
	}{s.From, s.To, s.GapFrom, s.GapTo, s.Insert, optionalSlice(s.Slice)})
	if err != nil || !s.Structure {
		return data, err
	}
	return setStructure(data)
}

func (s *ReplaceAroundStep) String() string {
	return fmt.Sprintf("replaceAround(%d, %d, %d, %d, %s, %d)", s.From, s.To, s.GapFrom, s.GapTo, s.Slice, s.Insert)
}

func decodeReplaceAround(sch *model.Schema, r gjson.Result) (Step, error) {
	var pos [5]int
	for i, name := range []string{"from", "to", "gapFrom", "gapTo", "insert"} {
		v, err := intField(r, name)
		if err != nil {
			return nil, err
		}
		pos[i] = v
	}
	slice, err := sliceField(sch, r, "slice")
	if err != nil {
		return nil, err
	}
	return NewReplaceAroundStep(pos[0], pos[1], pos[2], pos[3], slice, pos[4], r.Get("structure").Bool()), nil
}
