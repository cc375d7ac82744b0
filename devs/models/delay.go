package models

import (
	"github.com/devs-sim/devs-sim/devs"
)

// Delay is a single FIFO server: each payload received on In is forwarded
// on Out after a fixed service time. Payloads arriving while the server is
// busy queue up.
type Delay struct {
	*devs.AtomicModel

	In  *devs.Port
	Out *devs.Port

	service float64
	queue   []any
}

// NewDelay creates a delay server with the given service time.
func NewDelay(name string, service float64) *Delay {
	d := &Delay{AtomicModel: devs.NewAtomic(name), service: service}
	d.In = d.AddInputPort("in")
	d.Out = d.AddOutputPort("out")
	d.ExternalFn = func(m *devs.AtomicModel, elapsed float64, input devs.Bag) {
		wasIdle := len(d.queue) == 0
		d.queue = append(d.queue, input.Values(d.In)...)
		if wasIdle {
			m.Sigma = d.service
		} else {
			// Keep the head-of-line departure on schedule.
			m.Sigma -= elapsed
		}
	}
	d.OutputFn = func(m *devs.AtomicModel) {
		m.Post(d.queue[0], d.Out)
	}
	d.InternalFn = func(m *devs.AtomicModel) {
		d.queue = d.queue[1:]
		if len(d.queue) == 0 {
			m.Sigma = devs.Infinity
		} else {
			m.Sigma = d.service
		}
	}
	return d
}

// Backlog returns the number of payloads queued, the one in service
// included.
func (d *Delay) Backlog() int { return len(d.queue) }
