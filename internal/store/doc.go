// Package store persists the translation workspace tree in SQLite and
// exposes typed accessors for every entity table.
//
// The hierarchy is collections (project, book, chapter) containing content
// rows (verses, chapter meta, helper notes). Resource metadata rows describe
// imported containers, rc_link rows relate containers to each other, and
// resource_link rows attach helper content to the verse or chapter it
// annotates. subtree_has_resource is a derived cache owned by the subtree
// aggregator; it is never edited directly.
//
// All accessors live on Queries so the same methods run against the plain
// connection or inside a transaction opened with Store.WithTx. Top-level
// operations (import, derivation, subtree refresh) always run inside one
// transaction; a failure anywhere rolls the whole operation back.
package store
