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


package badger

// MemoryStore bundles in-memory repositories for testing.
type MemoryStore struct {
	Backend  *Backend
	Tenants  *TenantRepository
	Sections *SectionRepository
	Chunks   *ChunkRepository
	Counters *CounterStore
	Sessions *SessionStore
}

// NewMemoryStore creates in-memory repositories for testing.
// Caller must Close the store when done.
func NewMemoryStore() (*MemoryStore, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	tenants, err := NewTenantRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	sections, err := NewSectionRepository(backend)
	if err != nil {
		tenants.Close()
		backend.Close()
		return nil, err
	}

	return &MemoryStore{
		Backend:  backend,
		Tenants:  tenants,
		Sections: sections,
		Chunks:   NewChunkRepository(backend),
		Counters: NewCounterStore(backend),
		Sessions: NewSessionStore(backend),
	}, nil
}

// Close releases all repositories and the backing database.
func (m *MemoryStore) Close() {
	m.Sections.Close()
	m.Tenants.Close()
	m.Backend.Close()
}
