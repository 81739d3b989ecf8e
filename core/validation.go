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

import (
	"fmt"
	"strings"
)

// ValidateSection validates a Section according to domain rules.
//
// Validation rules:
//   - Title must not be blank
//   - Text must not be blank
//
// NOT validated (populated by the pipeline):
//   - ChunkCount (set when chunks are written)
//   - ID (0 is valid before persistence)
func ValidateSection(section *Section) error {
	if section == nil {
		return fmt.Errorf("%w: section is nil", ErrInvalidSection)
	}

	if strings.TrimSpace(section.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSection, ErrEmptyTitle)
	}

	if strings.TrimSpace(section.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSection, ErrEmptyContent)
	}

	return nil
}

// ValidateVector checks that a vector matches the deployment's embedding
// dimension. A dimension of 0 disables the check.
func ValidateVector(vector []float32, dimension int) error {
	if dimension > 0 && len(vector) != dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), dimension)
	}
	return nil
}

// TokenCount counts whitespace-separated tokens in text. It is the unit
// of the per-request token budget.
func TokenCount(text string) int {
	return len(strings.Fields(text))
}
