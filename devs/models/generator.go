package models

import (
	"math"

	"github.com/iti/rngstream"

	"github.com/devs-sim/devs-sim/devs"
)

// Generator emits job indices on its Out port at exponentially distributed
// interarrival times until Count jobs have been produced, then passivates.
// A Count of zero means no limit.
type Generator struct {
	*devs.AtomicModel

	Out *devs.Port

	// Emitted is the number of jobs produced so far.
	Emitted int

	rng   *rngstream.RngStream
	mean  float64
	count int
}

// NewGenerator creates a generator named name with the given mean
// interarrival time. The RNG stream is the next one in rngstream's
// package-wide sequence and carries name as its label.
func NewGenerator(name string, meanInterarrival float64, count int) *Generator {
	g := &Generator{
		AtomicModel: devs.NewAtomic(name),
		rng:         rngstream.New(name),
		mean:        meanInterarrival,
		count:       count,
	}
	g.Out = g.AddOutputPort("out")
	g.Sigma = g.draw()
	g.OutputFn = func(m *devs.AtomicModel) {
		m.Post(g.Emitted+1, g.Out)
	}
	g.InternalFn = func(m *devs.AtomicModel) {
		g.Emitted++
		if g.count > 0 && g.Emitted >= g.count {
			m.Sigma = devs.Infinity
			return
		}
		m.Sigma = g.draw()
	}
	return g
}

// draw samples an exponential interarrival time by inversion.
func (g *Generator) draw() float64 {
	u := g.rng.RandU01()
	return -g.mean * math.Log(1-u)
}

// Pulse emits a single value on a single out port at a fixed time, then
// passivates. It is the minimal active model: one output, one internal
// transition.
type Pulse struct {
	*devs.AtomicModel

	Out *devs.Port
}

// NewPulse creates a one-shot emitter firing value at time at.
func NewPulse(name string, at float64, value any) *Pulse {
	p := &Pulse{AtomicModel: devs.NewAtomic(name)}
	p.Out = p.AddOutputPort("out")
	p.Sigma = at
	p.OutputFn = func(m *devs.AtomicModel) {
		m.Post(value, p.Out)
	}
	p.InternalFn = func(m *devs.AtomicModel) {
		m.Sigma = devs.Infinity
	}
	return p
}
