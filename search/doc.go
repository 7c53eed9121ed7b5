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

// Package search resolves a question to the articles that ground its answer.
//
// Resolution runs in two stages with a fixed precedence:
//   - Exact lookup: when the question cites "artículo <label>", the stored
//     article whose header carries that label is returned on its own.
//   - Semantic retrieval: otherwise, or when no stored header matches, the
//     question is embedded in query mode and the top-k most similar articles
//     are returned.
//
// Neither stage surfaces errors to the caller. Provider and store failures
// are logged and yield an empty Resolution.
package search
