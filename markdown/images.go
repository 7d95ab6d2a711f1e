// Package markdown is the rich-text formatter for assistant output. Terminal
// rendering is delegated to glamour; the image scan walks goldmark's AST.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Image is an embedded image reference in markdown source.
type Image struct {
	Alt   string
	URL   string
	Title string
}

var parser = goldmark.New().Parser()

// Images lists the images referenced by md, in document order. Partial
// markdown (an unterminated image mid-stream) simply yields fewer images.
func Images(md string) []Image {
	if !bytes.Contains([]byte(md), []byte("![")) {
		return nil
	}
	src := []byte(md)
	doc := parser.Parse(text.NewReader(src))

	var out []Image
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		out = append(out, Image{
			Alt:   altText(img, src),
			URL:   string(img.Destination),
			Title: string(img.Title),
		})
		return ast.WalkSkipChildren, nil
	})
	return out
}

func altText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			continue
		}
		buf.WriteString(altText(c, src))
	}
	return buf.String()
}
