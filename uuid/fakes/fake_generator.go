package fakes

import (
	"fmt"
	"sync"
)

type FakeGenerator struct {
	GeneratedUUID string
	GenerateError error

	lock          sync.Mutex
	generateCount int
}

func NewFakeGenerator() *FakeGenerator {
	return &FakeGenerator{}
}

// Generate returns GeneratedUUID when set, and otherwise a sequence of
// distinct fake uuids.
func (gen *FakeGenerator) Generate() (string, error) {
	gen.lock.Lock()
	defer gen.lock.Unlock()

	gen.generateCount++

	if gen.GenerateError != nil {
		return "", gen.GenerateError
	}
	if gen.GeneratedUUID != "" {
		return gen.GeneratedUUID, nil
	}

	return fmt.Sprintf("fake-uuid-%d", gen.generateCount), nil
}

func (gen *FakeGenerator) GenerateCallCount() int {
	gen.lock.Lock()
	defer gen.lock.Unlock()

	return gen.generateCount
}
