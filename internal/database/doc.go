// Package database stores resolved lookups in SQLite.
//
// LookupDB keeps the outcome of each successful lookup made with --save:
// the KB that was queried, the catalog product, the supersedence chain
// and the resolved predecessor. Fetched pages are never stored.
//
// The database is a single file, kbreplace.db, in the XDG data directory,
// opened through the CGO-free modernc.org/sqlite driver.
package database
