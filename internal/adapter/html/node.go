// Package html implements domain.Node over parsed HTML documents.
package html

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/couchcryptid/weekly-forecast-etl/internal/domain"
)

// Node wraps a single goquery element. It implements domain.Node.
type Node struct {
	sel *goquery.Selection
}

// Parse reads a UTF-8 HTML document and returns its root node.
func Parse(r io.Reader) (*Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Node{sel: doc.Selection}, nil
}

// ParseString is Parse for an in-memory document.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

func (n *Node) Find(ctx context.Context, selector string) (domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	match := n.sel.Find(selector).First()
	if match.Length() == 0 {
		return nil, nil
	}
	return &Node{sel: match}, nil
}

func (n *Node) FindAll(ctx context.Context, selector string) ([]domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches := n.sel.Find(selector)
	nodes := make([]domain.Node, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, &Node{sel: s})
	})
	return nodes, nil
}

func (n *Node) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return n.sel.Text(), nil
}

func (n *Node) Attr(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, _ := n.sel.Attr(name)
	return v, nil
}
