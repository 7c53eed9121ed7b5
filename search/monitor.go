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

package search

import "github.com/poiesic/statute/core"

// SearchMonitor provides hooks to observe question resolution.
// Implement this interface to trace which stage produced the context.
type SearchMonitor interface {
	Start(question string)
	AfterCitation(label string) // empty when the question cites no article
	ExactMiss(label string)
	ExactHit(label string, article *core.Article)
	AfterSemanticSearch(results []*core.SearchResult)
	Finish(resolution *Resolution)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                             {}
func (n *noopMonitor) AfterCitation(_ string)                     {}
func (n *noopMonitor) ExactMiss(_ string)                         {}
func (n *noopMonitor) ExactHit(_ string, _ *core.Article)         {}
func (n *noopMonitor) AfterSemanticSearch(_ []*core.SearchResult) {}
func (n *noopMonitor) Finish(_ *Resolution)                       {}
