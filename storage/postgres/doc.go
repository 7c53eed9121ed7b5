// Package postgres implements storage.ArticleRepository on PostgreSQL with the
// pgvector extension.
//
// Articles live in a single table keyed by (document_id, label). Similarity
// search uses an HNSW cosine index whose ef_search is raised to the caller's
// candidate pool for each query; exact lookup uses the ~* operator.
package postgres
