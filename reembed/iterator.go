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

package reembed

import (
	"context"

	"github.com/poiesic/statute/core"
	"github.com/poiesic/statute/storage"
)

const (
	// DefaultBatchSize is the default number of articles handed to the callback at once.
	DefaultBatchSize = 100
)

// ArticleIterator walks every stored article, document by document.
type ArticleIterator struct {
	repo      storage.ArticleRepository
	batchSize int
}

// NewArticleIterator creates a new article iterator.
// batchSize: number of articles per callback (non-positive uses DefaultBatchSize)
func NewArticleIterator(repo storage.ArticleRepository, batchSize int) *ArticleIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ArticleIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn with consecutive batches of articles. A batch never spans
// two documents. Iteration stops on the first error from fn or on context
// cancellation, checked between batches.
func (it *ArticleIterator) ForEach(ctx context.Context, fn func([]*core.Article) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	documents, err := it.repo.ListDocuments(ctx)
	if err != nil {
		return err
	}

	for _, document := range documents {
		articles, err := it.repo.GetDocumentArticles(ctx, document.DocumentID)
		if err != nil {
			return err
		}

		for start := 0; start < len(articles); start += it.batchSize {
			end := min(start+it.batchSize, len(articles))
			if err := fn(articles[start:end]); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}

	return nil
}
