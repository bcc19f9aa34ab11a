package metrics

import (
	"go.uber.org/atomic"
)

// FakeFactory creates in-memory counters, for tests and for running without a
// metrics export surface.
type FakeFactory struct {
}

func NewFakeFactory() Factory {
	return &FakeFactory{}
}

func (f *FakeFactory) CreateCounter(name string, description string) (Counter, error) {
	return &fakeCounter{}, nil
}

func (f *FakeFactory) Start() error {
	return nil
}

func (f *FakeFactory) Stop() error {
	return nil
}

type fakeCounter struct {
	count atomic.Float64
}

func (c *fakeCounter) Inc() {
	c.count.Add(1)
}

func (c *fakeCounter) Add(delta float64) {
	c.count.Add(delta)
}

// Count returns the current value. Only fake counters support reading back.
func (c *fakeCounter) Count() float64 {
	return c.count.Load()
}

// Count reads back the value of a counter created by a FakeFactory, 0 for
// any other implementation.
func Count(c Counter) float64 {
	if fc, ok := c.(*fakeCounter); ok {
		return fc.Count()
	}
	return 0
}
