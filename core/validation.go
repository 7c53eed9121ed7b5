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

package core

import "fmt"

// ValidateArticle validates an Article according to domain rules.
//
// Validation rules:
//   - DocumentID must not be empty
//   - Label must not be empty
//   - Text must not be empty
//   - Vector must not be empty (articles are only stored once embedded)
//
// NOT validated:
//   - ID (assigned from DocumentID and Label when zero)
//   - Position (0 is the first article)
func ValidateArticle(article *Article) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}

	if article.DocumentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyDocumentID)
	}

	if article.Label == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyLabel)
	}

	if article.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyText)
	}

	if len(article.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrMissingVector)
	}

	return nil
}
