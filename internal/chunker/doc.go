// Package chunker splits article text into overlapping, bounded-size
// segments suitable for embedding.
//
// Chunks advance by Size-Overlap characters per step so consecutive chunks
// share Overlap characters of context. Before cutting, the chunker searches
// backward from the raw window edge for the nearest sentence or paragraph
// boundary past the halfway point, so sentences are rarely severed. Chunking
// is pure and deterministic: the same text and options always yield the same
// sequence.
package chunker
