package devs

import "math"

// Infinity is the passive time advance: a model whose time-advance function
// returns it has no scheduled internal event.
var Infinity = math.Inf(1)

// AtomicModel is a leaf of the model tree. Its dynamics are supplied as a
// function table at construction time; every entry is optional and the
// kernel substitutes a neutral default for a nil one. All functions receive
// the model itself so they can read ports, post output and update Sigma.
//
// Sigma is advisory: the default time advance returns it, and most models
// are written in terms of it, but a model supplying its own TimeAdvanceFn
// overrides Sigma entirely. The kernel only ever consults the time-advance
// function.
type AtomicModel struct {
	base

	// Sigma is the conventional next-activation delta. Advisory; see above.
	Sigma float64
	// Elapsed is the time since the last transition. Maintained by the
	// kernel; a nonzero value set before initialization offsets the first
	// activation.
	Elapsed float64
	// Time is the simulation time of the last activation.
	Time float64

	// ExternalFn handles input arriving after elapsed time units.
	ExternalFn func(m *AtomicModel, elapsed float64, input Bag)
	// InternalFn fires when the time advance expires.
	InternalFn func(m *AtomicModel)
	// ConfluentFn resolves an internal event coinciding with input (PDEVS).
	// When nil the kernel applies InternalFn then ExternalFn with zero
	// elapsed time.
	ConfluentFn func(m *AtomicModel, input Bag)
	// OutputFn posts values to output ports just before an internal event.
	OutputFn func(m *AtomicModel)
	// TimeAdvanceFn returns the delay until the next internal event: a
	// nonnegative number or Infinity. When nil, Sigma is returned.
	TimeAdvanceFn func(m *AtomicModel) float64
	// PostSimFn runs once at teardown.
	PostSimFn func(m *AtomicModel)
}

// NewAtomic creates a passive atomic model with no ports.
func NewAtomic(name string) *AtomicModel {
	return &AtomicModel{base: newBase(name), Sigma: Infinity}
}

// AddInputPort declares a named input port.
func (m *AtomicModel) AddInputPort(name string) *Port {
	return m.addPort(m, Input, name)
}

// AddOutputPort declares a named output port.
func (m *AtomicModel) AddOutputPort(name string) *Port {
	return m.addPort(m, Output, name)
}

// InputPort looks up an input port by name.
func (m *AtomicModel) InputPort(name string) (*Port, error) {
	return m.port(m, Input, name)
}

// OutputPort looks up an output port by name.
func (m *AtomicModel) OutputPort(name string) (*Port, error) {
	return m.port(m, Output, name)
}

// Post writes a value to one of m's output ports. Only meaningful inside
// OutputFn; the kernel drains and clears the buffers during collect.
func (m *AtomicModel) Post(v any, p *Port) {
	if p.host != Model(m) {
		panic(&InvalidPortHostError{Port: p, Model: m})
	}
	if p.dir != Output {
		panic(&InvalidPortTypeError{Port: p, Want: Output})
	}
	p.post(v)
}

// Retrieve returns the value pending on one of m's input ports, or nil.
// This is the scalar CDEVS view; PDEVS models read the Bag instead.
func (m *AtomicModel) Retrieve(p *Port) any {
	if p.host != Model(m) {
		panic(&InvalidPortHostError{Port: p, Model: m})
	}
	if p.dir != Input {
		panic(&InvalidPortTypeError{Port: p, Want: Input})
	}
	if len(p.values) == 0 {
		return nil
	}
	return p.values[0]
}

func (m *AtomicModel) atomicModel() *AtomicModel { return m }

// timeAdvance runs the model's time-advance function, Sigma by default.
func (m *AtomicModel) timeAdvance() float64 {
	if m.TimeAdvanceFn != nil {
		return m.TimeAdvanceFn(m)
	}
	return m.Sigma
}
