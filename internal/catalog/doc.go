// Package catalog talks to the Microsoft Update Catalog web interface.
//
// # Components
//
//   - Client: fetches catalog pages and builds search/detail URLs
//   - FindProduct: locates the first product on a search results page
//   - ExtractChain: reads the supersedence chain from a detail page
//
// # Catalog markup
//
// The catalog renders no machine-readable data, so the parser keys on the
// markup the site actually produces. Products on the search page are anchors
// whose onclick handler is goToDetails("<update id>"). On the detail page
// each superseded update of the "Package Details" tab is a div styled
// "padding-bottom: 0.3em;" whose text names the cumulative update and its KB.
// A change to either of these upstream breaks resolution with
// ErrRedirectNotFound or ErrNoCumulativeUpdate rather than a wrong answer.
//
// # Usage
//
//	client := catalog.NewClient(httpClient)
//	doc, err := client.FetchDocument(ctx, client.SearchURL("KB5001234"))
//	product, err := catalog.FindProduct(doc)
//	doc, err = client.FetchDocument(ctx, client.DetailURL(product.RedirectID))
//	replaced, err := catalog.ExtractReplaced(doc)
package catalog
