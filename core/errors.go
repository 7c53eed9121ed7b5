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

import "errors"

// Domain validation errors
var (
	// ErrInvalidArticle indicates an Article failed validation.
	ErrInvalidArticle = errors.New("invalid article")

	// ErrEmptyDocumentID indicates the DocumentID field is empty.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrEmptyLabel indicates the Label field is empty.
	ErrEmptyLabel = errors.New("article label cannot be empty")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("article text cannot be empty")

	// ErrMissingVector indicates an article is missing its embedding.
	ErrMissingVector = errors.New("article vector cannot be empty")
)
