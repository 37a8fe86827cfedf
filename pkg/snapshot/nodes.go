package snapshot

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

func compileCSS(selector string) (cascadia.Selector, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid CSS selector %q: %w", selector, err)
	}
	return sel, nil
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, val string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
}

func removeAttr(n *html.Node, name string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != name {
			out = append(out, a)
		}
	}
	n.Attr = out
}

func fillable(n *html.Node) bool {
	switch n.Data {
	case "textarea":
		return true
	case "input":
		t, _ := attr(n, "type")
		switch strings.ToLower(t) {
		case "", "text", "search", "email", "url", "tel", "number", "password":
			return true
		}
		return false
	}
	v, ok := attr(n, "contenteditable")
	return ok && v != "false"
}

func setValue(n *html.Node, text string) {
	if n.Data == "input" {
		setAttr(n, "value", text)
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// check applies the checked state a click leaves on a radio or checkbox.
// Radios in the same named group are unchecked first.
func check(n *html.Node) {
	if n.Data != "input" {
		return
	}
	t, _ := attr(n, "type")
	switch strings.ToLower(t) {
	case "checkbox":
		if _, ok := attr(n, "checked"); ok {
			removeAttr(n, "checked")
			return
		}
		setAttr(n, "checked", "")
	case "radio":
		if name, ok := attr(n, "name"); ok {
			root := n
			for root.Parent != nil {
				root = root.Parent
			}
			for _, peer := range htmlquery.Find(root, "//input[@type='radio']") {
				if v, _ := attr(peer, "name"); v == name {
					removeAttr(peer, "checked")
				}
			}
		}
		setAttr(n, "checked", "")
	}
}

// describe renders a short CSS-like label for journal entries.
func describe(n *html.Node) string {
	var b strings.Builder
	b.WriteString(n.Data)
	if id, ok := attr(n, "id"); ok && id != "" {
		b.WriteString("#" + id)
	}
	for _, key := range []string{"name", "type", "value"} {
		if v, ok := attr(n, key); ok && v != "" {
			fmt.Fprintf(&b, "[%s=%s]", key, v)
		}
	}
	if n.Data != "input" && n.Data != "textarea" {
		text := strings.Join(strings.Fields(htmlquery.InnerText(n)), " ")
		if r := []rune(text); len(r) > 40 {
			text = string(r[:40]) + "..."
		}
		if text != "" {
			fmt.Fprintf(&b, "(%q)", text)
		}
	}
	return b.String()
}
