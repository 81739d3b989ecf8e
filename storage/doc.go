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


// Package storage provides the storage abstraction layer for askbase.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic. Every section and chunk operation
// is scoped by tenant identifier; no cross-tenant query path exists in
// any interface.
//
// Two backend families implement these interfaces:
//   - storage/badger: embedded document store, similarity scan, counters
//     and session history on BadgerDB (in-memory mode for tests)
//   - storage/redis: counter store and session history on Redis for
//     multi-process deployments
//
// Public constructors return interfaces to prevent accidental coupling
// to backend specifics; internal constructors may return concrete types.
package storage
