// Package embedding turns article texts into stored vectors.
//
// A Batcher sends document-mode embedding requests in sequential batches,
// retries each batch with exponential backoff and normalizes the results to
// unit length. Both ingestion and re-embedding go through it.
package embedding
