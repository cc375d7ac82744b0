package devs

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Hook identifies a lifecycle point on the root coordinator.
type Hook int

const (
	// PostInit fires once after the processor tree is initialized at t=0.
	PostInit Hook = iota
	// PostStep fires after every completed collect/transition step.
	PostStep
	// PreTeardown fires once before post-simulation hooks run.
	PreTeardown
)

// Listener is invoked at a lifecycle hook with the current simulation time.
type Listener func(t float64)

// Config groups the kernel parameters for a simulation run.
type Config struct {
	// Formalism selects CDEVS (default) or PDEVS.
	Formalism Formalism
	// Flatten collapses a coupled hierarchy into a single coordinator over
	// the reachable atomics before building the processor tree. The
	// protocol is unchanged; only the tree shape differs.
	Flatten bool
	// Logger is the sink for kernel traces; nil means the standard logrus
	// logger.
	Logger *logrus.Logger
}

// RootCoordinator owns the top processor, holds global simulation time and
// drives the loop until the horizon or global passivity.
type RootCoordinator struct {
	env       *env
	child     Processor
	time      float64
	listeners map[Hook][]Listener
}

// NewRootCoordinator builds the processor tree for model and returns the
// root driving it.
func NewRootCoordinator(model Model, cfg Config) *RootCoordinator {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	model = unwrap(model)
	if cfg.Flatten {
		if cm, ok := model.(*CoupledModel); ok {
			model = Flatten(cm)
		}
	}
	e := &env{formalism: cfg.Formalism, log: log}
	return &RootCoordinator{
		env:       e,
		child:     newProcessor(model, e),
		listeners: make(map[Hook][]Listener),
	}
}

// AddListener registers fn at the given lifecycle hook. Listeners run in
// registration order.
func (r *RootCoordinator) AddListener(h Hook, fn Listener) {
	r.listeners[h] = append(r.listeners[h], fn)
}

// Time returns the current simulation time.
func (r *RootCoordinator) Time() float64 { return r.time }

// TimeNext returns the next event time across the whole tree.
func (r *RootCoordinator) TimeNext() float64 { return r.child.TimeNext() }

// Stats returns the counter tree keyed by model name.
func (r *RootCoordinator) Stats() *StatsNode { return r.child.Stats() }

// Simulate initializes the tree at t=0 and advances through discrete
// events until time_next reaches endTime, or immediately when the system
// goes quiescent (time_next = +Inf). Outputs reaching the root boundary
// are discarded.
func (r *RootCoordinator) Simulate(endTime float64) {
	r.env.log.Infof("starting %s simulation of %q until t=%g",
		r.env.formalism, r.child.Model().Name(), endTime)
	r.time = 0
	r.child.Init(0)
	r.notify(PostInit)
	steps := 0
	for {
		t := r.child.TimeNext()
		if t >= endTime || math.IsInf(t, 1) {
			break
		}
		r.time = t
		r.child.Collect(t)
		r.child.Transition(t, nil)
		steps++
		r.notify(PostStep)
	}
	r.notify(PreTeardown)
	r.child.Teardown()
	r.env.log.Infof("simulation of %q ended at t=%g after %d step(s)",
		r.child.Model().Name(), r.time, steps)
}

func (r *RootCoordinator) notify(h Hook) {
	for _, fn := range r.listeners[h] {
		fn(r.time)
	}
}
