package model_test

import (
	"errors"
	"testing"

	. "github.com/dshills/treedoc/internal/builder"
	"github.com/dshills/treedoc/internal/model"
)

func TestNodeSize(t *testing.T) {
	tests := []struct {
		node *model.Node
		want int
	}{
		{P(), 2},
		{P("abc"), 5},
		{P("日本"), 4},
		{P("😀"), 4},
		{HR(), 1},
		{Doc(P("a"), Blockquote(P("bc"))), 11},
	}
	for _, tt := range tests {
		if got := tt.node.NodeSize(); got != tt.want {
			t.Errorf("%s NodeSize() = %d, want %d", tt.node, got, tt.want)
		}
		if tt.node.Kind() == model.KindContainer && tt.node.NodeSize() != tt.node.Content().Size()+2 {
			t.Errorf("%s size does not match content", tt.node)
		}
	}
}

func TestTextBetween(t *testing.T) {
	doc := Doc(P("ab", BR(), "cd"), Blockquote(P("ef")), HR())

	tests := []struct {
		from, to  int
		sep, leaf string
		want      string
	}{
		{0, doc.Content().Size(), "", "", "abcdef"},
		{0, doc.Content().Size(), "\n", "|", "ab|cd\nef\n|"},
		{2, 5, "", "_", "b_c"},
	}
	for _, tt := range tests {
		if got := doc.TextBetween(tt.from, tt.to, tt.sep, tt.leaf); got != tt.want {
			t.Errorf("TextBetween(%d, %d) = %q, want %q", tt.from, tt.to, got, tt.want)
		}
	}
	if got := doc.TextContent(); got != "abcdef" {
		t.Errorf("TextContent() = %q", got)
	}
}

func TestNodesBetween(t *testing.T) {
	doc := Doc(P("ab"), Blockquote(P("cd")), P("ef"))

	var seen []string
	doc.NodesBetween(2, 8, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		seen = append(seen, n.Type().Name())
		return true
	}, 0)
	want := []string{"paragraph", "text", "blockquote", "paragraph", "text"}
	if len(seen) != len(want) {
		t.Fatalf("visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("visited %v, want %v", seen, want)
			break
		}
	}

	count := 0
	doc.Descendants(func(n *model.Node, _ int, _ *model.Node, _ int) bool {
		count++
		return n.Type().Name() != "blockquote"
	})
	if count != 5 {
		t.Errorf("Descendants visited %d nodes, want 5", count)
	}
}

func TestNodeCut(t *testing.T) {
	p := P("abc")
	got, err := p.Cut(1, 2)
	if err != nil || !got.Eq(P("b")) {
		t.Errorf("Cut(1, 2) = %v, %v", got, err)
	}
	text := p.FirstChild()
	if _, err := text.Cut(2, 2); !errors.Is(err, model.ErrRange) {
		t.Errorf("empty text cut error = %v, want ErrRange", err)
	}
	if got, err := text.Cut(0, 2); err != nil || got.Text() != "ab" {
		t.Errorf("text Cut(0, 2) = %v, %v", got, err)
	}
}

func TestCanReplace(t *testing.T) {
	doc := Doc(P("a"), P("b"))
	rule := model.NewFragment(HR())
	text := model.NewFragment(Default().Text("x"))

	if !doc.CanReplace(1, 1, rule, 0, 1) {
		t.Error("rule should be insertable between paragraphs")
	}
	if doc.CanReplace(0, 2, model.Fragment{}, 0, 0) {
		t.Error("removing every block leaves invalid content")
	}
	if doc.CanReplace(1, 1, text, 0, 1) {
		t.Error("text is not allowed in the document")
	}
	code := CodeBlock("x")
	if code.CanReplace(0, 1, model.NewFragment(Default().Text("y", "em")), 0, 1) {
		t.Error("code blocks do not allow marks")
	}
}

func TestCheck(t *testing.T) {
	if err := Doc(P("a", Strong("b")), UL(LI(P("c")))).Check(); err != nil {
		t.Errorf("Check() = %v", err)
	}

	s := Default().Schema()
	if _, err := s.Node("doc", nil, model.Fragment{}); !errors.Is(err, model.ErrContentMatch) {
		t.Errorf("empty doc error = %v, want ErrContentMatch", err)
	}
	if _, err := s.Node("paragraph", nil, model.NewFragment(HR())); !errors.Is(err, model.ErrContentMatch) {
		t.Errorf("rule in paragraph error = %v, want ErrContentMatch", err)
	}
	em, _ := s.Mark("em", nil)
	styled, _ := s.Text("x", em)
	if _, err := s.Node("code_block", nil, model.NewFragment(styled)); !errors.Is(err, model.ErrContentMatch) {
		t.Errorf("marked code error = %v, want ErrContentMatch", err)
	}
	if _, err := s.Node("image", nil, model.Fragment{}); !errors.Is(err, model.ErrSchemaValidation) {
		t.Errorf("image without src error = %v, want ErrSchemaValidation", err)
	}
	if _, err := s.Text(""); !errors.Is(err, model.ErrSchemaValidation) {
		t.Errorf("empty text error = %v, want ErrSchemaValidation", err)
	}
}

func TestMarkSets(t *testing.T) {
	s := Default().Schema()
	em, _ := s.Mark("em", nil)
	strong, _ := s.Mark("strong", nil)
	link1, _ := s.Mark("link", model.Attrs{"href": "/a"})
	link2, _ := s.Mark("link", model.Attrs{"href": "/b"})

	set := strong.AddToSet(nil)
	set = em.AddToSet(set)
	set = link1.AddToSet(set)
	if got := markNames(set); got != "link,em,strong" {
		t.Errorf("set = %s, want rank order", got)
	}

	set = link2.AddToSet(set)
	if len(set) != 3 || !set[0].Eq(link2) {
		t.Errorf("link should replace the existing link: %v", set)
	}
	set = em.RemoveFromSet(set)
	if em.IsInSet(set) || markNames(set) != "link,strong" {
		t.Errorf("RemoveFromSet left %s", markNames(set))
	}
	if !model.SameMarkSet(model.MarkSetFrom([]model.Mark{strong, em}), []model.Mark{em, strong}) {
		t.Error("MarkSetFrom should sort by rank")
	}
}

func markNames(set []model.Mark) string {
	out := ""
	for i, m := range set {
		if i > 0 {
			out += ","
		}
		out += m.Type().Name()
	}
	return out
}

func BenchmarkResolve(b *testing.B) {
	doc := benchDoc(200)
	size := doc.Content().Size()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := doc.Resolve(i % size); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReplace(b *testing.B) {
	doc := benchDoc(200)
	slice := Slice(0, 0, "inserted")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := doc.Replace(3, 5, slice); err != nil {
			b.Fatal(err)
		}
	}
}

func benchDoc(paragraphs int) *model.Node {
	blocks := make([]*model.Node, paragraphs)
	for i := range blocks {
		blocks[i] = P("the quick brown fox ", Em("jumps"), " over the lazy dog")
	}
	return Doc(blocks)
}
