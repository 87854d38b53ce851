// Package derivation creates translated copies of imported projects. A
// derived project mirrors the source tree structure, carries none of the
// source takes or text, and stays connected to its origin through source
// references and content derivative edges so helper resources follow the
// translation.
package derivation
