// Command canticle manages a translation workspace: importing resource
// containers, deriving projects into new languages, and inspecting the
// content tree.
package main
