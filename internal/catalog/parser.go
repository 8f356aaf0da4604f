package catalog

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/kbreplace/internal/kb"
)

// Markup the catalog uses for products and package details.
const (
	// detailsAction is the click handler name on product anchors.
	detailsAction = "goToDetails"

	// packageDetailStyle is the inline style of each package details row.
	packageDetailStyle = "padding-bottom: 0.3em;"

	// cumulativeUpdateMarker identifies rows that name a cumulative update.
	cumulativeUpdateMarker = "Cumulative Update"
)

// detailsCallRegex captures the single quoted argument of a goToDetails call.
var detailsCallRegex = regexp.MustCompile(detailsAction + `\(\s*["']([^"']*)["']\s*\);?`)

// Product is an update listed on the catalog search page.
type Product struct {
	// RedirectID addresses the product detail page.
	RedirectID string

	// Title is the anchor text, usually the full update name.
	Title string
}

// FindProduct returns the first product on a search results page.
// Only the first anchor whose onclick handler calls goToDetails with a
// string argument counts; later products for the same KB are ignored.
func FindProduct(doc *html.Node) (Product, error) {
	var product Product
	found := false

	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "a" {
			return true
		}
		onclick, ok := getAttr(n, "onclick")
		if !ok || !strings.Contains(onclick, detailsAction) {
			return true
		}
		m := detailsCallRegex.FindStringSubmatch(onclick)
		if m == nil {
			return true
		}
		product = Product{
			RedirectID: m[1],
			Title:      normalizeText(textContent(n)),
		}
		found = true
		return false
	})

	if !found {
		return Product{}, ErrRedirectNotFound
	}
	return product, nil
}

// FindRedirectID returns the detail page identifier of the first product
// on a search results page.
func FindRedirectID(doc *html.Node) (string, error) {
	product, err := FindProduct(doc)
	if err != nil {
		return "", err
	}
	return product.RedirectID, nil
}

// ExtractChain returns the unique cumulative update numbers listed in the
// package details of a detail page, in document order.
func ExtractChain(doc *html.Node) ([]string, error) {
	chain := make([]string, 0)
	seen := make(map[string]bool)
	var walkErr error

	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "div" {
			return true
		}
		style, ok := getAttr(n, "style")
		if !ok || style != packageDetailStyle {
			return true
		}
		text := textContent(n)
		if !strings.Contains(text, cumulativeUpdateMarker) {
			return true
		}

		number, ok := kb.ExtractNumber(strings.TrimSpace(text))
		if !ok {
			walkErr = &MalformedEntryError{Text: strings.TrimSpace(text)}
			return false
		}
		if !seen[number] {
			seen[number] = true
			chain = append(chain, number)
		}
		return true
	})

	if walkErr != nil {
		return nil, walkErr
	}
	return chain, nil
}

// ExtractReplaced returns the KB identifier a detail page's update
// supersedes: the last unique cumulative update in its package details.
func ExtractReplaced(doc *html.Node) (string, error) {
	chain, err := ExtractChain(doc)
	if err != nil {
		return "", err
	}
	if len(chain) == 0 {
		return "", ErrNoCumulativeUpdate
	}
	return kb.Format(chain[len(chain)-1]), nil
}

// walk visits n and its descendants in document order until visit
// returns false. It reports whether the walk ran to completion.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

// textContent concatenates all text below n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

// normalizeText folds compatibility characters such as non-breaking spaces
// and collapses runs of whitespace.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
