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


// Package search provides tiered retrieval over a tenant's sections.
//
// The Engine type runs up to three tiers in order:
//   - Vector similarity over chunk embeddings
//   - Text relevance, when the storage backend provides one
//   - Verbatim keyword matching
//
// Each tier only runs when the previous one produced nothing. Vector
// and text tier failures are logged and fall through rather than
// failing the query, so retrieval degrades instead of erroring when the
// embedding service is down. Only a keyword tier failure, which has no
// further fallback, fails the query.
package search
