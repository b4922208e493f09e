package archive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// section is one "## " heading of a rendered document with the list items
// and paragraphs that follow it.
type section struct {
	Title      string
	Items      []string
	Paragraphs []string
}

// splitFrontMatter separates the YAML header from the Markdown body.
func splitFrontMatter(t *testing.T, doc string) (string, string) {
	t.Helper()
	require.True(t, strings.HasPrefix(doc, "---\n"), "document must start with front matter")
	rest := strings.TrimPrefix(doc, "---\n")
	fm, body, ok := strings.Cut(rest, "\n---\n")
	require.True(t, ok, "front matter must be closed")
	return fm, body
}

// parseSections parses Markdown with goldmark and groups top-level blocks
// under their level-2 heading.
func parseSections(t *testing.T, body string) []section {
	t.Helper()
	src := []byte(body)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var out []section
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 2 {
				out = append(out, section{Title: inlineText(node, src)})
			}
		case *ast.List:
			if len(out) == 0 {
				continue
			}
			cur := &out[len(out)-1]
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				cur.Items = append(cur.Items, inlineText(item, src))
			}
		case *ast.Paragraph:
			if len(out) == 0 {
				continue
			}
			cur := &out[len(out)-1]
			cur.Paragraphs = append(cur.Paragraphs, inlineText(node, src))
		}
	}
	return out
}

func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func findSection(t *testing.T, sections []section, title string) section {
	t.Helper()
	for _, s := range sections {
		if s.Title == title {
			return s
		}
	}
	t.Fatalf("section %q not found in %+v", title, sections)
	return section{}
}
