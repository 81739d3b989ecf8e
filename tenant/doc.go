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


// Package tenant manages tenant accounts and API-key resolution.
//
// The Directory fronts tenant storage with two read-through caches: a
// short-lived key cache for the per-request API-key lookup and a longer
// profile cache for lookups by ID. Every mutation invalidates its cache
// entries synchronously before returning, so a plan change is visible
// to the next request.
//
// Raw API keys are hashed before storage and lookup; the raw key only
// exists in the handshake that issues it.
package tenant
