// Package searcher implements waterfall retrieval over the article store
// and the vector index.
//
// A query runs through up to three stages, each filling whatever result
// slots the previous stages left open: exact title substring matches first,
// then BM25 full-text matches, then semantic nearest-neighbor matches. An
// article appears at most once, credited to the earliest stage that found
// it. Stage scores live on different scales on purpose; within a stage they
// order results, across stages the stage itself is the ranking.
package searcher
