package schema

import (
	"sync"

	"github.com/dshills/treedoc/internal/model"
)

func strPtr(s string) *string { return &s }

// DefaultSpec returns the spec of the built-in schema: paragraphs, block
// quotes, headings, code blocks, rules, images, hard breaks and lists, with
// link, em, strong and code marks.
func DefaultSpec() model.SchemaSpec {
	return model.SchemaSpec{
		Nodes: []model.NodeSpec{
			{Name: "doc", Content: "block+"},
			{Name: "paragraph", Content: "inline*", Group: "block"},
			{Name: "blockquote", Content: "block+", Group: "block"},
			{Name: "horizontal_rule", Group: "block"},
			{
				Name:    "heading",
				Content: "inline*",
				Group:   "block",
				Attrs:   map[string]model.AttributeSpec{"level": model.DefaultAttr(1)},
			},
			{
				Name:    "code_block",
				Content: "text*",
				Marks:   strPtr(""),
				Group:   "block",
				Attrs:   map[string]model.AttributeSpec{"language": model.DefaultAttr(nil)},
			},
			{
				Name:    "ordered_list",
				Content: "list_item+",
				Group:   "block",
				Attrs:   map[string]model.AttributeSpec{"order": model.DefaultAttr(1)},
			},
			{Name: "bullet_list", Content: "list_item+", Group: "block"},
			{Name: "list_item", Content: "paragraph block*"},
			{Name: "text", Group: "inline"},
			{
				Name:   "image",
				Inline: true,
				Group:  "inline",
				Attrs: map[string]model.AttributeSpec{
					"src":   model.RequiredAttr(),
					"alt":   model.DefaultAttr(nil),
					"title": model.DefaultAttr(nil),
				},
			},
			{Name: "hard_break", Inline: true, Group: "inline"},
		},
		Marks: []model.MarkSpec{
			{
				Name: "link",
				Attrs: map[string]model.AttributeSpec{
					"href":  model.RequiredAttr(),
					"title": model.DefaultAttr(nil),
				},
			},
			{Name: "em"},
			{Name: "strong"},
			{Name: "code"},
		},
	}
}

var defaultSchema = sync.OnceValue(func() *model.Schema {
	return model.MustSchema(DefaultSpec())
})

// Default returns the built-in schema. It is compiled once.
func Default() *model.Schema {
	return defaultSchema()
}
