// Package page runs the independent sections of one page load.
//
// Each Section loads its data, renders a fragment and mounts it into its own
// container of a Document. Sections run concurrently with no ordering
// between them; a failing section mounts an error card into its own
// container and never affects its siblings.
package page
