// Package model defines the data structures shared by the lookup pipeline,
// the report writers and the history database.
//
// The central type is Lookup, which accumulates everything learned while
// resolving a single KB identifier: the catalog URLs that were fetched, the
// redirect identifier of the first listed product, the supersedence chain
// from the detail page and the KB it replaces.
//
// Lookups are serializable to JSON for report output and database storage.
package model
