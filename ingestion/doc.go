// Package ingestion loads legal documents into the article store.
//
// For each document the Pipeline extracts page text, segments it into
// articles, embeds every article in document mode and only then replaces
// the document's partition in the store (delete, then insert). A failure
// before the delete leaves the previously stored articles untouched.
//
// Directories are processed on an ants worker pool; each worker handles
// one document at a time and embedding batches inside a document stay
// sequential. Per-document failures are collected with errors.Join and do
// not stop the remaining documents.
package ingestion
