// Package deleter removes objects from the asset bucket in bounded chunks.
//
// Chunks are sent one after another. The first failed chunk stops the run;
// chunks already sent stay deleted and later chunks are never attempted.
//
// The store only deletes leaves, so folders are expanded with ExpandFolders
// first.
package deleter
