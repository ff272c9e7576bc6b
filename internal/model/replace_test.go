package model_test

import (
	"errors"
	"strings"
	"testing"

	. "github.com/dshills/treedoc/internal/builder"
	"github.com/dshills/treedoc/internal/model"
)

func mustReplace(t *testing.T, doc *model.Node, from, to int, slice model.Slice) *model.Node {
	t.Helper()
	out, err := doc.Replace(from, to, slice)
	if err != nil {
		t.Fatalf("Replace(%d, %d, %s): %v", from, to, slice, err)
	}
	if err := out.Check(); err != nil {
		t.Fatalf("Replace(%d, %d) produced an invalid document: %v", from, to, err)
	}
	return out
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name     string
		doc      *model.Node
		from, to int
		slice    model.Slice
		want     *model.Node
	}{
		{
			name:  "replace text",
			doc:   Doc(P("rats"), P("rats")),
			from:  1,
			to:    5,
			slice: Slice(0, 0, "farts"),
			want:  Doc(P("farts"), P("rats")),
		},
		{
			name:  "delete a character at the end of a paragraph",
			doc:   Doc(P("Crazy?"), P("I was crazy once.")),
			from:  6,
			to:    7,
			slice: model.EmptySlice,
			want:  Doc(P("Crazy"), P("I was crazy once.")),
		},
		{
			name:  "split a paragraph",
			doc:   Doc(P("Crazy?")),
			from:  4,
			to:    4,
			slice: Slice(1, 1, P(), P()),
			want:  Doc(P("Cra"), P("zy?")),
		},
		{
			name:  "join paragraphs",
			doc:   Doc(P("ab"), P("cd")),
			from:  2,
			to:    6,
			slice: model.EmptySlice,
			want:  Doc(P("ad")),
		},
		{
			name:  "insert inline node",
			doc:   Doc(P("ab")),
			from:  2,
			to:    2,
			slice: Slice(0, 0, BR()),
			want:  Doc(P("a", BR(), "b")),
		},
		{
			name:  "insert block between paragraphs",
			doc:   Doc(P("a"), P("b")),
			from:  3,
			to:    3,
			slice: Slice(0, 0, HR()),
			want:  Doc(P("a"), HR(), P("b")),
		},
		{
			name:  "delete whole block",
			doc:   Doc(P("a"), HR(), P("b")),
			from:  3,
			to:    4,
			slice: model.EmptySlice,
			want:  Doc(P("a"), P("b")),
		},
		{
			name:  "merge inserted text with neighbours",
			doc:   Doc(P("ad")),
			from:  2,
			to:    2,
			slice: Slice(0, 0, "bc"),
			want:  Doc(P("abcd")),
		},
		{
			name:  "keep marks distinct",
			doc:   Doc(P("ad")),
			from:  2,
			to:    2,
			slice: Slice(0, 0, Em("bc")),
			want:  Doc(P("a", Em("bc"), "d")),
		},
		{
			name:  "join into a list item",
			doc:   Doc(UL(LI(P("one")), LI(P("two")))),
			from:  6,
			to:    10,
			slice: model.EmptySlice,
			want:  Doc(UL(LI(P("onetwo")))),
		},
		{
			name:  "insert open slice across blockquote",
			doc:   Doc(Blockquote(P("ab"))),
			from:  3,
			to:    3,
			slice: Slice(2, 2, Blockquote(P("x")), Blockquote(P("y"))),
			want:  Doc(Blockquote(P("ax")), Blockquote(P("yb"))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustReplace(t, tt.doc, tt.from, tt.to, tt.slice)
			if !got.Eq(tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestReplaceKeepsStructure(t *testing.T) {
	doc := Doc(P("Crazy?"), P("I was crazy once."))
	got := mustReplace(t, doc, 6, 7, model.EmptySlice)

	if got.ChildCount() != 2 {
		t.Fatalf("ChildCount() = %d, want 2", got.ChildCount())
	}
	if got.Child(0).TextContent() != "Crazy" {
		t.Errorf("first paragraph = %q", got.Child(0).TextContent())
	}
	if got.Child(1) != doc.Child(1) {
		t.Error("untouched paragraph should be shared with the original")
	}
	if doc.Child(0).TextContent() != "Crazy?" {
		t.Error("original document was modified")
	}
	if got.Content().Size() != doc.Content().Size()-1 {
		t.Errorf("size = %d, want %d", got.Content().Size(), doc.Content().Size()-1)
	}
}

func TestReplaceAround(t *testing.T) {
	doc := Doc(P("Hello "), P("Man this is epic."))
	gap := doc.TextBetween(9, 26, "", "")

	got, err := doc.ReplaceAround(8, 27, 9, 26, 1, Slice(0, 0, CodeBlock("")), true)
	if err != nil {
		t.Fatalf("ReplaceAround: %v", err)
	}
	want := Doc(P("Hello "), CodeBlock("Man this is epic."))
	if !got.Eq(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
	if code := got.Child(1).TextContent(); code != gap {
		t.Errorf("code block text = %q, want %q", code, gap)
	}
	if got.Child(0) != doc.Child(0) {
		t.Error("first paragraph should be shared")
	}
}

func TestReplaceAroundWrap(t *testing.T) {
	doc := Doc(P("a"), P("b"))
	wrapper := Blockquote(P("tmp")).Copy(model.Fragment{})
	open, err := model.NewSlice(model.NewFragment(wrapper), 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	got, err := doc.ReplaceAround(3, 6, 3, 6, 1, open, true)
	if err != nil {
		t.Fatalf("ReplaceAround: %v", err)
	}
	if want := Doc(P("a"), Blockquote(P("b"))); !got.Eq(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestReplaceErrors(t *testing.T) {
	doc := Doc(P("ab"), P("cd"))

	tests := []struct {
		name     string
		from, to int
		slice    model.Slice
		is       []error
	}{
		{"start after end", 3, 1, model.EmptySlice, []error{model.ErrReplace, model.ErrRange}},
		{"end out of range", 0, 100, model.EmptySlice, []error{model.ErrReplace, model.ErrRange}},
		{"negative start", -1, 2, model.EmptySlice, []error{model.ErrReplace, model.ErrRange}},
		{"paragraph in paragraph", 1, 1, Slice(0, 0, P("x")), []error{model.ErrReplace, model.ErrContentMatch}},
		{"text at top level", 0, 0, Slice(0, 0, "x"), []error{model.ErrReplace, model.ErrContentMatch}},
		{"emptying the document", 0, 8, model.EmptySlice, []error{model.ErrReplace, model.ErrContentMatch}},
		{"open start too deep", 0, 0, Slice(1, 1, P("x")), []error{model.ErrReplace}},
		{"inconsistent open depths", 1, 1, Slice(1, 0, P("x")), []error{model.ErrReplace}},
	}

	before := doc.String()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := doc.Replace(tt.from, tt.to, tt.slice)
			if err == nil {
				t.Fatalf("expected error, got %s", out)
			}
			if out != nil {
				t.Error("failed replace returned a document")
			}
			for _, target := range tt.is {
				if !errors.Is(err, target) {
					t.Errorf("error %q is not %v", err, target)
				}
			}
		})
	}
	if doc.String() != before {
		t.Errorf("document changed by failed replaces: %s", doc)
	}
}

func TestReplaceAroundErrors(t *testing.T) {
	doc := Doc(P("Hello "), P("Man this is epic."))
	code := Slice(0, 0, CodeBlock(""))

	tests := []struct {
		name                         string
		from, to, gapFrom, gapTo, at int
		slice                        model.Slice
		structure                    bool
		msg                          string
	}{
		{"gap outside range", 8, 27, 7, 26, 1, code, true, "invalid gap"},
		{"insert past slice", 8, 27, 9, 26, 5, code, true, "invalid insert offset"},
		{"structure crosses content", 8, 27, 10, 26, 1, code, true, "gap crosses node boundary"},
		{"gap not flat", 0, 27, 2, 20, 1, Slice(0, 0, Blockquote(P("x"))), false, "gap is not a flat range"},
		{"gap does not fit", 0, 27, 0, 8, 1, code, false, "does not fit"},
		{"gap beside slice content", 8, 27, 9, 26, 0, code, true, "invalid content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := doc.ReplaceAround(tt.from, tt.to, tt.gapFrom, tt.gapTo, tt.at, tt.slice, tt.structure)
			if !errors.Is(err, model.ErrReplace) {
				t.Fatalf("error = %v, want ErrReplace", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestReplaceNoop(t *testing.T) {
	for _, doc := range propertyDocs() {
		for p := 0; p <= doc.Content().Size(); p++ {
			if !cuttable(doc, p) {
				continue
			}
			got, err := doc.Replace(p, p, model.EmptySlice)
			if err != nil {
				t.Fatalf("%s: Replace(%d, %d): %v", doc, p, p, err)
			}
			if !got.Eq(doc) {
				t.Fatalf("%s: empty replace at %d produced %s", doc, p, got)
			}
		}
	}
}

func TestSliceReinsert(t *testing.T) {
	for _, doc := range propertyDocs() {
		size := doc.Content().Size()
		for from := 0; from <= size; from++ {
			for to := from; to <= size; to++ {
				if !cuttable(doc, from) || !cuttable(doc, to) {
					continue
				}
				slice, err := doc.Slice(from, to)
				if err != nil {
					t.Fatalf("%s: Slice(%d, %d): %v", doc, from, to, err)
				}
				got, err := doc.Replace(from, to, slice)
				if err != nil {
					t.Fatalf("%s: Replace(%d, %d, %s): %v", doc, from, to, slice, err)
				}
				if !got.Eq(doc) {
					t.Fatalf("%s: reinserting Slice(%d, %d) produced %s", doc, from, to, got)
				}
			}
		}
	}
}

func propertyDocs() []*model.Node {
	return []*model.Node{
		Doc(P("ab"), Blockquote(P(Em("cd"), "ef"))),
		Doc(H(1, "Title"), P("x", BR(), "y"), HR(), CodeBlock("code")),
		Doc(UL(LI(P("one")), LI(P("two"), Blockquote(P("three"))))),
		Doc(P(Strong("日本"), "é")),
		Doc(P("a😀b"), P(Em("🎉"), "x😀")),
	}
}

// cuttable reports whether pos can bound a cut in doc.
func cuttable(doc *model.Node, pos int) bool {
	_, err := doc.Content().Cut(pos, doc.Content().Size())
	return err == nil
}

func TestSurrogatePairBoundaries(t *testing.T) {
	doc := Doc(P("a😀b"))

	for _, pos := range []int{0, 1, 2, 3, 4, 5, 6} {
		rp, err := doc.Resolve(pos)
		if err != nil || rp.Pos() != pos {
			t.Errorf("Resolve(%d) = %v, %v", pos, rp, err)
		}
	}

	tests := []struct {
		name     string
		from, to int
	}{
		{"end inside pair", 2, 3},
		{"start inside pair", 3, 4},
		{"both inside pair", 3, 3},
		{"across pair", 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := doc.Replace(tt.from, tt.to, model.EmptySlice); !errors.Is(err, model.ErrRange) {
				t.Errorf("Replace(%d, %d) error = %v, want ErrRange", tt.from, tt.to, err)
			}
			if tt.from == tt.to {
				return
			}
			if _, err := doc.Slice(tt.from, tt.to); !errors.Is(err, model.ErrRange) {
				t.Errorf("Slice(%d, %d) error = %v, want ErrRange", tt.from, tt.to, err)
			}
		})
	}

	got := mustReplace(t, doc, 2, 4, model.EmptySlice)
	if want := Doc(P("ab")); !got.Eq(want) {
		t.Errorf("deleting the pair = %s, want %s", got, want)
	}
	if got.NodeSize() != doc.NodeSize()-2 {
		t.Errorf("size after delete = %d, want %d", got.NodeSize(), doc.NodeSize()-2)
	}
	if _, err := doc.Child(0).Child(0).Cut(0, 2); !errors.Is(err, model.ErrRange) {
		t.Errorf("text Cut inside pair error = %v, want ErrRange", err)
	}
}
