// Package importer brings parsed resource containers into the workspace
// store. Book and bundle containers create their own collection trees; help
// containers anchor onto books they declare relations to and never create
// collections of their own. Each import runs in a single transaction, so a
// failed import leaves the store exactly as it was.
package importer
