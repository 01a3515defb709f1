// Package scaffold generates new module skeletons from embedded templates. It
// powers "kernel module new": a manifest, a README, and the public/ and
// migrations/ directories the installer looks for.
package scaffold
