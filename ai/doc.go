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


// Package ai provides abstractions for the AI services used in askbase.
//
// It defines interfaces for text embedding and answer completion so the
// core pipeline depends on abstractions rather than concrete backends.
// Two interchangeable embedding strategies are provided: a model-backed
// one (ai/openai) and a deterministic hash-based stand-in (ai/hashed)
// used when no model is configured. Swapping strategies never requires
// changes to callers.
package ai
