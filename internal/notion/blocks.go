package notion

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var parser = goldmark.New()

// MarkdownToBlocks converts a markdown document into Notion block objects.
// Headings map to heading_2/heading_3, list items to bulleted_list_item,
// thematic breaks to divider, everything else to paragraph. Inline
// formatting is flattened to plain text.
func MarkdownToBlocks(markdown string) []Block {
	source := []byte(markdown)
	doc := parser.Parser().Parse(text.NewReader(source))

	var blocks []Block
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		blocks = append(blocks, nodeToBlocks(node, source)...)
	}
	return blocks
}

func nodeToBlocks(node ast.Node, source []byte) []Block {
	switch n := node.(type) {
	case *ast.Heading:
		kind := "heading_3"
		if n.Level <= 2 {
			kind = "heading_2"
		}
		return []Block{textBlock(kind, nodeText(n, source))}

	case *ast.List:
		var blocks []Block
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			content := nodeText(item, source)
			if content == "" {
				continue
			}
			blocks = append(blocks, textBlock("bulleted_list_item", content))
		}
		return blocks

	case *ast.ThematicBreak:
		return []Block{{
			"object":  "block",
			"type":    "divider",
			"divider": map[string]any{},
		}}

	default:
		content := nodeText(node, source)
		if content == "" {
			return nil
		}
		return []Block{textBlock("paragraph", content)}
	}
}

// nodeText flattens a node's inline content to plain text, keeping soft
// line breaks as single spaces.
func nodeText(node ast.Node, source []byte) string {
	var b strings.Builder
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func textBlock(kind, content string) Block {
	return Block{
		"object": "block",
		"type":   kind,
		kind: map[string]any{
			"rich_text": []map[string]any{
				{
					"type": "text",
					"text": map[string]any{"content": content},
				},
			},
		},
	}
}
