package devs

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Formalism selects the simulation protocol variant.
type Formalism int

const (
	// CDEVS is classic DEVS: simultaneous internal events are serialized
	// through the coupled model's select function and ports carry at most
	// one value per step.
	CDEVS Formalism = iota
	// PDEVS is parallel DEVS: every imminent model fires concurrently and
	// input arrives as port-keyed bags, with confluent transitions
	// resolving internal/external collisions per model.
	PDEVS
)

func (f Formalism) String() string {
	switch f {
	case CDEVS:
		return "CDEVS"
	case PDEVS:
		return "PDEVS"
	default:
		return fmt.Sprintf("Formalism(%d)", int(f))
	}
}

// env carries the run-wide collaborators shared by every processor of one
// simulation. The logger travels here instead of through a package global
// so two concurrent simulations can log to different sinks.
type env struct {
	formalism Formalism
	log       *logrus.Logger
}

// Processor is the runtime twin of a model. Simulators wrap atomic models,
// coordinators wrap coupled models; both answer the same four messages
// from their parent. Between step boundaries every processor maintains
// time_last <= t <= time_next.
type Processor interface {
	Schedulable

	Model() Model
	TimeLast() float64

	// Init seeds time_last and time_next at simulation start and returns
	// time_next.
	Init(t float64) float64
	// Collect invokes output functions of imminent models and returns the
	// messages crossing this processor's boundary upward. Requires
	// t == time_next.
	Collect(t float64) []Message
	// Transition applies the pending input and/or internal event at t.
	Transition(t float64, input Bag)
	// Teardown invokes post-simulation hooks, leaves first.
	Teardown()
	// Stats returns this processor's counter subtree.
	Stats() *StatsNode
}

// newProcessor builds the runtime twin of m, recursively for coupled
// models.
func newProcessor(m Model, e *env) Processor {
	switch m := unwrap(m).(type) {
	case *AtomicModel:
		return newSimulator(m, e)
	case *CoupledModel:
		return newCoordinator(m, e)
	default:
		panic(fmt.Sprintf("cannot build a processor for model type %T", m))
	}
}
