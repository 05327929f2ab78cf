package scan

import (
	"os"
	"strings"

	"golang.org/x/net/html"
)

// parsedPage is the per-page extraction result.
type parsedPage struct {
	title string     // first <h1> text, else <title> text, else ""
	hrefs []string   // anchor targets in document order
	nav   *html.Node // first <nav> (or toc-classed container), nil if absent
}

// parseFile reads and parses a single built page.
func parseFile(path string) (*parsedPage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	root, err := html.Parse(f)
	if err != nil {
		return nil, err
	}

	pg := &parsedPage{}
	walkHTML(root, pg, false)
	if pg.title == "" {
		pg.title = pg.docTitle(root)
	}
	return pg, nil
}

// walkHTML collects anchors, the first h1, and the nav container.
// Anchors inside the nav are navigation chrome, not content references,
// and are excluded from hrefs.
func walkHTML(n *html.Node, pg *parsedPage, inNav bool) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "a":
			if inNav || isHeaderlink(n) {
				break
			}
			if href := attr(n, "href"); href != "" {
				pg.hrefs = append(pg.hrefs, href)
			}
		case "h1":
			if pg.title == "" {
				pg.title = strings.TrimSpace(text(n))
			}
		case "nav":
			if pg.nav == nil {
				pg.nav = n
			}
			inNav = true
		case "div":
			if pg.nav == nil && isTocContainer(n) {
				pg.nav = n
			}
			if isTocContainer(n) {
				inNav = true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, pg, inNav)
	}
}

// docTitle extracts the <title> text, trimming the " — Project docs" suffix
// that generators append.
func (pg *parsedPage) docTitle(root *html.Node) string {
	var title string
	var find func(*html.Node)
	find = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			title = strings.TrimSpace(text(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(root)
	for _, sep := range []string{" — ", " &mdash; ", " | "} {
		if i := strings.Index(title, sep); i > 0 {
			title = title[:i]
			break
		}
	}
	return strings.TrimSpace(title)
}

// isHeaderlink reports whether the anchor is a section self-link
// (the ¶ paragraph anchors generators attach to headings).
func isHeaderlink(n *html.Node) bool {
	return strings.Contains(attr(n, "class"), "headerlink")
}

// isTocContainer reports whether the div carries a toc-ish class.
func isTocContainer(n *html.Node) bool {
	class := attr(n, "class")
	return strings.Contains(class, "toctree") || strings.Contains(class, "toc")
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// text returns the concatenated text content of a node's subtree.
func text(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}
