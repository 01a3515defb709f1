// Package platform provides the cross-platform link operations used for
// publishing module assets and switching the active profile. On Unix it
// creates relative symlinks. On Windows it falls back to directory
// junctions (no administrator rights needed) or, for single files, to a
// copy plus a .target sidecar.
package platform
