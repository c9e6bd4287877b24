// Package graph implements the object graph: a directed graph whose vertices
// are objects and whose labeled edges are named attributes.
//
// # Overview
//
// A [Graph] owns every vertex. Vertices are identified by an [ID] that is
// unique while the vertex is live and recycled after removal. Each vertex
// carries an optional opaque payload (primitive data attached by the
// producer) and an edge table mapping labels to target identities:
//
//	g := graph.New()
//	root := g.Insert()              // ν0
//	x := g.Insert()                 // ν1
//	_ = g.Connect(root, "x", x)
//	_ = g.SetPayload(x, payload.FromInt64(42))
//	id, _ := g.ResolvePath(root, "x") // ν1
//
// Labels are unique per source vertex: connecting an existing label again
// retargets it. Cycles, including self-loops, are normal; every traversal
// in this package tracks visited vertices explicitly and is bounded by the
// visit limit ([WithVisitLimit]).
//
// # Operations
//
//   - Vertex store: [Graph.Insert], [Graph.Add], [Graph.Remove],
//     [Graph.SetPayload], [Graph.Payload], [Graph.Exists], [Graph.All]
//   - Edge table: [Graph.Connect], [Graph.Disconnect], [Graph.Target],
//     [Graph.Labels], [Graph.Kids]
//   - Paths: [Graph.Resolve], [Graph.ResolvePath], [Graph.Walk]
//   - Merging: [Graph.Merge], [Graph.MergeFrom]
//   - Subgraphs: [Graph.Reachable], [Graph.Slice], [Graph.Inspect]
//
// Garbage collection lives in package gc, serialization in package io and
// fingerprints in package digest; they all operate on a *Graph handle, so a
// program that never collects pays nothing for it.
//
// # Errors
//
// All failures are returned as values. Match categories with errors.Is
// ([ErrVertexNotFound], [ErrEdgeNotFound], [ErrInvalidLabel],
// [ErrBrokenPath], [ErrFormat], [ErrCycleGuard]) and extract details with
// errors.As ([*VertexError], [*PathError], ...).
//
// # Concurrency
//
// A Graph performs no internal synchronization. Callers sharing a graph
// between goroutines must serialize access themselves.
package graph
