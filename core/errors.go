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

// Domain errors
var (
	// ErrEmptyContent indicates that submitted text is empty or produced no chunks.
	// Caller-fixable; never retried.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidSection indicates a Section failed validation.
	ErrInvalidSection = errors.New("invalid section")

	// ErrEmptyTitle indicates the section Title field is empty.
	ErrEmptyTitle = errors.New("section title cannot be empty")

	// ErrInvalidPlanTier indicates an unknown plan tier name.
	ErrInvalidPlanTier = errors.New("invalid plan tier")

	// ErrQuotaExceeded indicates a hard quota was hit (section count or
	// monthly call budget). Not retried automatically.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrRateLimited indicates a minute or hour window denial.
	// The caller may retry after the hint elapses.
	ErrRateLimited = errors.New("rate limited")

	// ErrRequestTooLarge indicates the request exceeds the tenant's
	// per-request token budget.
	ErrRequestTooLarge = errors.New("request exceeds token budget")

	// ErrEmbeddingUnavailable indicates the embedding backend kept failing
	// after bounded retries.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDimensionMismatch indicates a vector whose length does not match
	// the deployment's embedding dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
