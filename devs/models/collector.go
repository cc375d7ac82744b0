package models

import (
	"github.com/devs-sim/devs-sim/devs"
)

// Receipt records one delivery to a Collector.
type Receipt struct {
	Time  float64
	Value any
}

// Collector is a passive sink that records everything arriving on its In
// port together with the receipt time.
type Collector struct {
	*devs.AtomicModel

	In *devs.Port

	// Receipts holds every delivery in arrival order.
	Receipts []Receipt
}

// NewCollector creates an empty collector.
func NewCollector(name string) *Collector {
	c := &Collector{AtomicModel: devs.NewAtomic(name)}
	c.In = c.AddInputPort("in")
	c.ExternalFn = func(m *devs.AtomicModel, elapsed float64, input devs.Bag) {
		now := m.Time + elapsed
		for _, v := range input.Values(c.In) {
			c.Receipts = append(c.Receipts, Receipt{Time: now, Value: v})
		}
	}
	return c
}

// Count returns the number of payloads received.
func (c *Collector) Count() int { return len(c.Receipts) }
