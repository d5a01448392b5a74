// Package catalog holds the read-only answer catalog: the record store, the
// three-level category index and the keyword matcher.
//
// A Catalog is produced once by Load from four required sources in a data
// directory:
//
//   - answersembed.db: answer records with their stored embeddings
//   - agencies.db: referral agencies keyed by name
//   - introclosing.db: intro and closing paragraphs
//   - conjunctions.json: ordered connective phrases
//
// Load is all-or-nothing. If any source is missing it returns a
// *MissingSourceError naming every absent source and no Catalog at all.
//
// # Category index
//
// Records are grouped by (cat1, cat2, cat3). A NULL or empty value at any
// level is grouped under core.UnknownCategory. This is a deliberate grouping
// policy so uncategorised answers stay reachable from the browse tree.
// Lookups for unknown paths return an empty slice, never an error.
//
// # Keyword search
//
// Search is a literal, case-sensitive substring test against title and body.
// Matches come back in storage order with no ranking.
//
// A Catalog is immutable after Load and safe for concurrent readers. Slices
// returned by its methods are copies.
package catalog
