// Package imagecheck validates listing image URLs against dead links,
// undersized files, wrong content types, and HTML masquerading as images, and
// runs the maintenance sweep that filters stored image sets.
package imagecheck
