package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const pkg = "markdown/"

type Heading struct {
	Level  int
	Text   string
	Anchor string
}

type Link struct {
	RawTarget string
	Line      int
}

// Doc is the extraction result for one markdown file: enough structure
// for link-graph checks, nothing else.
type Doc struct {
	Title    string
	Headings []Heading
	Links    []Link
}

func (d *Doc) Anchors() []string {
	anchors := make([]string, 0, len(d.Headings))
	for _, h := range d.Headings {
		anchors = append(anchors, h.Anchor)
	}
	return anchors
}

// Parse walks the goldmark AST of source and collects headings (with
// GitHub-style anchor slugs) and link destinations with line numbers.
// Images count as links: a relative image reference must resolve too.
func Parse(source []byte) (*Doc, error) {
	op := pkg + "Parse"

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))

	doc := &Doc{}
	seen := make(map[string]int)

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			headingText := nodeText(node, source)
			doc.Headings = append(doc.Headings, Heading{
				Level:  node.Level,
				Text:   headingText,
				Anchor: uniqueAnchor(slugify(headingText), seen),
			})
			if node.Level == 1 && doc.Title == "" {
				doc.Title = headingText
			}
		case *ast.Link:
			doc.Links = append(doc.Links, Link{
				RawTarget: string(node.Destination),
				Line:      lineOf(node, source),
			})
		case *ast.Image:
			doc.Links = append(doc.Links, Link{
				RawTarget: string(node.Destination),
				Line:      lineOf(node, source),
			})
		case *ast.AutoLink:
			doc.Links = append(doc.Links, Link{
				RawTarget: string(node.URL(source)),
				Line:      lineOf(node, source),
			})
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc, nil
}

func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch t := child.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
		case *ast.String:
			sb.Write(t.Value)
		default:
			sb.WriteString(nodeText(child, source))
		}
	}

	return sb.String()
}

// lineOf finds the 1-based source line of a node via its first text
// segment. Nodes without any positioned descendant report line 0.
func lineOf(n ast.Node, source []byte) int {
	seg, ok := firstSegment(n)
	if !ok || seg.Start > len(source) {
		return 0
	}

	return bytes.Count(source[:seg.Start], []byte("\n")) + 1
}

func firstSegment(n ast.Node) (text.Segment, bool) {
	if t, ok := n.(*ast.Text); ok {
		return t.Segment, true
	}

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if seg, ok := firstSegment(child); ok {
			return seg, true
		}
	}

	return text.Segment{}, false
}

// slugify mirrors GitHub's heading anchor algorithm: lowercase, spaces
// to dashes, everything but letters, digits, dashes and underscores
// dropped.
func slugify(heading string) string {
	var sb strings.Builder

	for _, r := range strings.ToLower(heading) {
		switch {
		case r == ' ':
			sb.WriteRune('-')
		case r == '-' || r == '_',
			r >= 'a' && r <= 'z',
			r >= '0' && r <= '9':
			sb.WriteRune(r)
		}
	}

	return sb.String()
}

func uniqueAnchor(slug string, seen map[string]int) string {
	count := seen[slug]
	seen[slug] = count + 1

	if count == 0 {
		return slug
	}

	return fmt.Sprintf("%s-%d", slug, count)
}
