// Package pipeline resolves KB identifiers by running catalog steps in sequence.
//
// A lookup is a fixed two stage pipeline over one model.Lookup:
//
//  1. SearchStep fetches the catalog search page and finds the first
//     product's redirect identifier.
//  2. DetailStep fetches that product's detail page and extracts the
//     supersedence chain.
//
// The second fetch depends on data parsed from the first, so the steps
// always run one after the other and the pipeline stops at the first
// failure. BatchProcessor runs several independent lookups concurrently
// with errgroup.
package pipeline
