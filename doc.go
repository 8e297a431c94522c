// Package finvec provides a persistent embedding vector store for Go.
//
// A Store pairs an exhaustive, append-only similarity index with a
// metadata side-table. Records carry a namespace and scalar metadata;
// deletion is logical (the metadata entry is removed and the ordinal
// tombstoned) until the deleted fraction crosses a threshold and the
// index is compacted.
//
// # Quick Start
//
//	ctx := context.Background()
//	store, _ := finvec.Open("./data/index.fvec", 1536, distance.MetricSquaredL2)
//	defer store.Close()
//
//	store.Upsert(ctx, []finvec.Item{
//	    {ID: "doc-1", Values: vec, Metadata: md},
//	}, "filings")
//
//	matches, _ := store.Query(ctx, queryVec, 5, func(o *finvec.QueryOptions) {
//	    o.Namespace = "filings"
//	    o.Filter = filter
//	})
//
// Both artifacts (index at the given path, metadata at path + ".meta")
// are written atomically on every mutation, index first, so a crash
// between the two writes is resolved on reload by tombstoning the
// unmapped ordinals.
//
// Mirroring to an object store is optional; see WithMirror and the
// blobstore subpackages.
package finvec
