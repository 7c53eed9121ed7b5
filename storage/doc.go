// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package storage provides the storage abstraction layer for statute.
//
// This package defines the repository interface that decouples the article
// store from ingestion and retrieval. BadgerDB (embedded, default) and
// PostgreSQL with pgvector are interchangeable behind it.
//
// # Constructor Return Type Pattern
//
// Public constructors return interface types to enforce abstraction:
//
//	repo, err := badger.NewRepository(path)   // returns storage.ArticleRepository
//	repo, err := postgres.NewRepository(ctx, dsn, dims)
//
// Internal package constructors may return concrete types since they're only
// used within the implementation package.
//
// # Architecture
//
//   - Repository: similarity search and lifecycle shared by every backend
//   - ArticleRepository: document-partitioned article records, exact pattern
//     lookup and document listing
//
// # Usage
//
//	repo, err := badger.NewMemoryRepository()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support.
package storage
