// Package reembed rebuilds the stored vectors of every article with the
// currently configured embedding model.
//
// Articles are visited document by document in position order, embedded in
// document mode through an embedding.Batcher (batched, retried, normalized)
// and upserted back in place. Progress is reported to an io.Writer.
package reembed
