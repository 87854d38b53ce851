// Package rcpkg models resource containers at the workspace boundary: the
// parsed content tree handed to the importer, the declared relations between
// containers, and the TOML manifest written when derivation materializes a
// new container on disk.
package rcpkg
