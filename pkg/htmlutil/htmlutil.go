package htmlutil

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// text inside these elements is never rendered
func skipped(node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	switch node.DataAtom {
	case atom.Script, atom.Style, atom.Template:
		return true
	}
	return false
}

func collectStrings(node *html.Node, out *[]string) {
	if node == nil || skipped(node) {
		return
	}
	if node.Type == html.TextNode {
		s := strings.TrimSpace(node.Data)
		if s != "" {
			*out = append(*out, s)
		}
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectStrings(child, out)
	}
}

// Strings returns the trimmed, non-empty text nodes under the selection in
// document order.
func Strings(sel *goquery.Selection) []string {
	var out []string
	if sel == nil {
		return out
	}
	for _, n := range sel.Nodes {
		collectStrings(n, &out)
	}
	return out
}

// GetTextSeparated joins the trimmed text nodes under the selection with sep.
func GetTextSeparated(sel *goquery.Selection, sep string) string {
	return strings.Join(Strings(sel), sep)
}

// NormalizeWhitespace collapses runs of whitespace into a single space and
// trims both ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizedText is the whitespace-normalized text of the selection, or ""
// for a nil or empty selection.
func NormalizedText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	return NormalizeWhitespace(GetTextSeparated(sel, " "))
}

// Lines renders the selection's text with a line break between text nodes
// and returns every trimmed, non-empty line in document order.
func Lines(sel *goquery.Selection) []string {
	lines := []string{}
	for _, s := range Strings(sel) {
		for _, line := range strings.Split(s, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

// ResolveUrl resolves href against base. Absolute hrefs are returned as is.
func ResolveUrl(base *url.URL, href string) (*url.URL, error) {
	link, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, err
	}
	if base == nil {
		return link, nil
	}
	return base.ResolveReference(link), nil
}

// GetLinks reads the href of every node in the selection and resolves it
// against base. Nodes without an href or with an unparsable one are skipped.
func GetLinks(base *url.URL, sel *goquery.Selection) []*url.URL {
	links := []*url.URL{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = strings.TrimSpace(a.Val)
				break
			}
		}
		if href == "" {
			continue
		}

		link, err := ResolveUrl(base, href)
		if err != nil {
			continue
		}
		links = append(links, link)
	}
	return links
}
