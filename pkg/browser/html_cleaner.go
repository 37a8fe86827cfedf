package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// CleanedHTML is a document reduced to its structure and targeting attributes.
type CleanedHTML struct {
	HTML      string
	Title     string
	Truncated bool
}

var (
	skippedElements = setOf("script", "style", "noscript", "iframe", "embed", "object", "svg", "template", "head")

	blockElements = setOf("div", "p", "section", "article", "header", "footer", "nav", "main", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table", "tr", "td", "th",
		"form", "fieldset", "legend", "label", "blockquote", "pre", "dialog")

	voidElements = setOf("area", "base", "br", "col", "embed", "hr", "img", "input", "link", "meta",
		"param", "source", "track", "wbr")

	globalAttributes = setOf("id", "class", "role", "aria-label", "aria-checked", "aria-selected",
		"title", "draggable", "contenteditable")

	tagAttributes = map[string]map[string]bool{
		"a":        setOf("href"),
		"img":      setOf("alt"),
		"input":    setOf("name", "type", "placeholder", "value", "checked"),
		"textarea": setOf("name", "placeholder"),
		"select":   setOf("name", "multiple"),
		"option":   setOf("value", "selected"),
		"button":   setOf("type", "name", "value"),
		"label":    setOf("for"),
		"form":     setOf("action"),
	}
)

func setOf(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}

// CleanHTML strips scripts, styles and presentational attributes from raw,
// keeping the element structure and the attributes a selector can target.
// Output is cut off once it reaches maxLength bytes; maxLength <= 0 means no
// limit.
func CleanHTML(raw string, maxLength int) (*CleanedHTML, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	c := &cleaner{max: maxLength}
	c.walk(doc, 0)

	return &CleanedHTML{
		HTML:      strings.TrimSpace(c.out.String()),
		Title:     findTitle(doc),
		Truncated: c.truncated,
	}, nil
}

type cleaner struct {
	out       strings.Builder
	max       int
	truncated bool
}

func (c *cleaner) full() bool {
	return c.max > 0 && c.out.Len() >= c.max
}

func (c *cleaner) walk(n *html.Node, depth int) {
	if c.truncated {
		return
	}
	if c.full() {
		c.truncated = true
		return
	}

	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return
	case html.TextNode:
		c.text(n.Data)
		return
	case html.ElementNode:
		c.element(n, depth)
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child, depth)
	}
}

func (c *cleaner) text(data string) {
	text := strings.Join(strings.Fields(data), " ")
	if text == "" {
		return
	}
	if c.max > 0 && c.out.Len()+len(text) > c.max {
		text = text[:c.max-c.out.Len()] + "..."
		c.truncated = true
	}
	c.out.WriteString(text)
}

func (c *cleaner) element(n *html.Node, depth int) {
	tag := strings.ToLower(n.Data)
	if skippedElements[tag] {
		return
	}
	if tag == "html" || tag == "body" {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			c.walk(child, depth)
		}
		return
	}

	block := blockElements[tag]
	if block {
		c.newline(depth)
	}
	c.out.WriteString("<" + tag)
	for _, a := range n.Attr {
		if keepAttribute(tag, a.Key) {
			fmt.Fprintf(&c.out, ` %s="%s"`, a.Key, html.EscapeString(a.Val))
		}
	}
	c.out.WriteString(">")
	if voidElements[tag] {
		return
	}

	start := c.out.Len()
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child, depth+1)
	}
	// Close on its own line only when a nested block broke the line.
	if block && strings.Contains(c.out.String()[start:], "\n") {
		c.newline(depth)
	}
	c.out.WriteString("</" + tag + ">")
}

func (c *cleaner) newline(depth int) {
	if c.out.Len() == 0 {
		return
	}
	c.out.WriteString("\n" + strings.Repeat("  ", depth))
}

func keepAttribute(tag, attr string) bool {
	attr = strings.ToLower(attr)
	if globalAttributes[attr] || strings.HasPrefix(attr, "data-") {
		return true
	}
	return tagAttributes[tag][attr]
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		return ""
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if title := findTitle(child); title != "" {
			return title
		}
	}
	return ""
}
