package scan

import (
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/docviz/docviz/pkg/toctree"
)

// buildNav converts the root document's nav container into a toctree rooted
// at the root document itself. The nav's top-level list entries become the
// root's children; nested lists become child subtrees.
//
// Returns a single-node tree when the root page has no nav, so the toctree
// view always has something to show.
func buildNav(nav *html.Node, rootDoc, rootTitle string) *toctree.Node {
	root := &toctree.Node{
		Label: rootTitle,
		Path:  viewerPath(rootDoc),
	}
	if nav == nil {
		return root
	}
	if list := findList(nav); list != nil {
		root.Children = listEntries(list, rootDoc)
	}
	return root
}

// findList locates the first <ul> or <ol> under n.
func findList(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol") {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if list := findList(c); list != nil {
			return list
		}
	}
	return nil
}

// listEntries converts the <li> children of a list into toctree nodes.
func listEntries(list *html.Node, baseDoc string) []*toctree.Node {
	var nodes []*toctree.Node
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		if node := entry(li, baseDoc); node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// entry converts a single <li> into a toctree node: the first anchor gives
// the label and target, a nested list gives the children.
func entry(li *html.Node, baseDoc string) *toctree.Node {
	node := &toctree.Node{}
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "a":
			if node.Label == "" {
				node.Label = strings.TrimSpace(text(c))
				if doc, kind := classifyHref(baseDoc, attr(c, "href"), nil); kind == hrefInternal {
					node.Path = viewerPath(doc)
				}
			}
		case "ul", "ol":
			node.Children = append(node.Children, listEntries(c, baseDoc)...)
		default:
			// Themes wrap entries in arbitrary containers; look through them.
			if node.Label == "" {
				if a := findAnchor(c); a != nil {
					node.Label = strings.TrimSpace(text(a))
					if doc, kind := classifyHref(baseDoc, attr(a, "href"), nil); kind == hrefInternal {
						node.Path = viewerPath(doc)
					}
				}
			}
			if list := findList(c); list != nil {
				node.Children = append(node.Children, listEntries(list, baseDoc)...)
			}
		}
	}
	if node.Label == "" && len(node.Children) == 0 {
		return nil
	}
	return node
}

// findAnchor locates the first anchor under n, not descending into lists
// (those belong to child entries).
func findAnchor(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		if n.Data == "a" {
			return n
		}
		if n.Data == "ul" || n.Data == "ol" {
			return nil
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if a := findAnchor(c); a != nil {
			return a
		}
	}
	return nil
}

// viewerPath returns the page path relative to the viewer directory
// (_static/docviz/html), three levels below the site root.
func viewerPath(doc string) string {
	return path.Join("../../..", doc+".html")
}
