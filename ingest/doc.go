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


// Package ingest turns raw section text into persisted, embedded chunks.
//
// The Pipeline validates a batch up front, chunks and embeds sections
// concurrently through a worker pool, and only persists a section once
// every one of its chunks has an embedding. A section either lands
// whole or not at all; readers never see a half-ingested section.
package ingest
