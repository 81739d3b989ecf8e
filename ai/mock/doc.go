// Package mock provides test doubles for the ai package interfaces.
//
// All mocks support behavior injection via function fields and default
// to deterministic behavior so tests are reproducible without network
// access or real AI services.
package mock
