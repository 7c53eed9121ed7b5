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

package storage

import (
	"fmt"

	"github.com/poiesic/statute/core"
)

// MarshalArticle serializes an Article to bytes.
func MarshalArticle(article *core.Article) []byte {
	buf := make([]byte, core.ArticleMUS.Size(*article))
	core.ArticleMUS.Marshal(*article, buf)
	return buf
}

// UnmarshalArticle deserializes an Article from bytes.
func UnmarshalArticle(data []byte) (*core.Article, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty article record", ErrSerializationFailed)
	}
	article, _, err := core.ArticleMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &article, nil
}

// MarshalDocumentSummary serializes the per-document summary (the ID lives in the key).
func MarshalDocumentSummary(summary core.DocumentSummary) []byte {
	buf := make([]byte, core.DocumentSummaryMUS.Size(summary))
	core.DocumentSummaryMUS.Marshal(summary, buf)
	return buf
}

// UnmarshalDocumentSummary deserializes a per-document summary for documentID.
func UnmarshalDocumentSummary(documentID string, data []byte) (core.DocumentSummary, error) {
	summary, _, err := core.DocumentSummaryMUS.Unmarshal(data)
	if err != nil {
		return core.DocumentSummary{}, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	summary.DocumentID = documentID
	return summary, nil
}
