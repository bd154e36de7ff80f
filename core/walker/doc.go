// Package walker traverses the hierarchical asset bucket.
//
// A walk keeps an explicit stack of pending prefixes instead of recursing, so
// memory stays bounded by the number of folders waiting to be listed and the
// traversal order is a property of this package alone. Each prefix is read in
// offset-addressed pages; a short or empty page ends that prefix.
//
// The empty-directory marker written by the hosted store is hidden from
// scans. IncludingPlaceholders exposes it for callers that must see every
// stored object, such as folder deletion and backups.
//
// Sibling order is not part of the contract.
package walker
