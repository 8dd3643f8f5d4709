package domain

import "context"

// fakeNode is an in-memory Node. children maps a selector to its matches;
// the first match answers Find.
type fakeNode struct {
	text     string
	attrs    map[string]string
	children map[string][]Node

	findErr    error
	findAllErr error
	textErr    error
}

func (n *fakeNode) Find(_ context.Context, selector string) (Node, error) {
	if n.findErr != nil {
		return nil, n.findErr
	}
	matches := n.children[selector]
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (n *fakeNode) FindAll(_ context.Context, selector string) ([]Node, error) {
	if n.findAllErr != nil {
		return nil, n.findAllErr
	}
	return n.children[selector], nil
}

func (n *fakeNode) Text(context.Context) (string, error) {
	if n.textErr != nil {
		return "", n.textErr
	}
	return n.text, nil
}

func (n *fakeNode) Attr(_ context.Context, name string) (string, error) {
	return n.attrs[name], nil
}

func textNode(s string) Node {
	return &fakeNode{text: s}
}

// cellNode builds a forecast cell; empty arguments leave the sub-field out.
func cellNode(label, rainy, maxTemp, minTemp string) *fakeNode {
	children := map[string][]Node{}
	if label != "" {
		children[SelectorWeatherIcon] = []Node{&fakeNode{attrs: map[string]string{AttrWeatherLabel: label}}}
	}
	if rainy != "" {
		children[SelectorRainyPercent] = []Node{textNode(rainy)}
	}
	if maxTemp != "" {
		children[SelectorMaxTemp] = []Node{textNode(maxTemp)}
	}
	if minTemp != "" {
		children[SelectorMinTemp] = []Node{textNode(minTemp)}
	}
	return &fakeNode{children: children}
}

func rowNode(name string, cells ...Node) *fakeNode {
	children := map[string][]Node{SelectorForecastCell: cells}
	if name != "" {
		children[SelectorRegionName] = []Node{textNode(name)}
	}
	return &fakeNode{children: children}
}
