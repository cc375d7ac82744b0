package devs

import (
	"fmt"
	"math"
)

// Simulator executes one atomic model's dynamics. It owns the model's
// clock window (time_last, time_next) and dispatches the parent's collect
// and transition messages to the user's function table.
type Simulator struct {
	env      *env
	model    *AtomicModel
	timeLast float64
	timeNext float64
	// collected is set when the output function ran this step, so the
	// CDEVS transition can tell a selected imminent (whose internal event
	// must fire) from a non-selected one that merely received input.
	collected bool
	counts    Counts
}

func newSimulator(m *AtomicModel, e *env) *Simulator {
	return &Simulator{env: e, model: m}
}

// Model returns the wrapped atomic model.
func (s *Simulator) Model() Model { return s.model }

// TimeLast returns the time of the last transition.
func (s *Simulator) TimeLast() float64 { return s.timeLast }

// TimeNext returns the time of the next internal event.
func (s *Simulator) TimeNext() float64 { return s.timeNext }

// Init seeds the clock window. A model initialized with nonzero Elapsed
// behaves as if its last transition happened Elapsed time units before t.
func (s *Simulator) Init(t float64) float64 {
	s.timeLast = t - s.model.Elapsed
	s.model.Time = s.timeLast
	s.timeNext = s.timeLast + s.ta()
	s.env.log.Debugf("[t=%g] init %q: time_next=%g", t, s.model.Name(), s.timeNext)
	return s.timeNext
}

// Collect runs the output function and yields the posted values upward.
func (s *Simulator) Collect(t float64) []Message {
	if t != s.timeNext {
		panic(&BadSynchronizationError{Processor: s.model.Name(), At: t,
			TimeLast: s.timeLast, TimeNext: s.timeNext})
	}
	s.collected = true
	s.counts.Output++
	if s.model.OutputFn != nil {
		s.invoke("output", t, func() { s.model.OutputFn(s.model) })
	}
	var msgs []Message
	for _, p := range s.model.OutputPorts() {
		for _, v := range p.values {
			msgs = append(msgs, Message{Value: v, Port: p})
		}
		p.clear()
	}
	s.counts.MessagesOut += len(msgs)
	s.env.log.Debugf("[t=%g] collect %q: %d message(s)", t, s.model.Name(), len(msgs))
	return msgs
}

// Transition applies the internal, external or confluent transition chosen
// by t and the input bag, then recomputes the clock window.
func (s *Simulator) Transition(t float64, input Bag) {
	if t < s.timeLast || t > s.timeNext {
		panic(&BadSynchronizationError{Processor: s.model.Name(), At: t,
			TimeLast: s.timeLast, TimeNext: s.timeNext})
	}
	for p := range input {
		if p.host != Model(s.model) {
			panic(&InvalidPortHostError{Port: p, Model: s.model})
		}
		if p.dir != Input {
			panic(&InvalidPortTypeError{Port: p, Want: Input})
		}
	}
	// Mirror the bag into the input-port buffers so CDEVS models can use
	// the scalar Retrieve view.
	for _, p := range s.model.InputPorts() {
		p.values = append(p.values, input[p]...)
	}
	n := input.Size()
	s.counts.MessagesIn += n

	if s.env.formalism == CDEVS {
		// A non-selected imminent never had its output collected; input
		// arriving at t == time_next is still a plain external event for
		// it, and the deferred internal event fires on a later round.
		switch {
		case s.collected && n == 0:
			s.internal(t)
		case s.collected:
			s.confluent(t, input)
		case n > 0:
			s.external(t, input)
		case t == s.timeNext:
			s.internal(t)
		default:
			panic(&BadSynchronizationError{Processor: s.model.Name(), At: t,
				TimeLast: s.timeLast, TimeNext: s.timeNext})
		}
	} else {
		switch {
		case t == s.timeNext && n == 0:
			s.internal(t)
		case t == s.timeNext:
			s.confluent(t, input)
		case n > 0:
			s.external(t, input)
		default:
			panic(&BadSynchronizationError{Processor: s.model.Name(), At: t,
				TimeLast: s.timeLast, TimeNext: s.timeNext})
		}
	}
	s.collected = false

	s.timeLast = t
	s.model.Time = t
	s.timeNext = t + s.ta()
	for _, p := range s.model.InputPorts() {
		p.clear()
	}
	s.env.log.Debugf("[t=%g] transition %q: time_next=%g", t, s.model.Name(), s.timeNext)
}

func (s *Simulator) internal(t float64) {
	s.counts.Internal++
	s.model.Elapsed = 0
	if s.model.InternalFn != nil {
		s.invoke("internal transition", t, func() { s.model.InternalFn(s.model) })
	}
}

func (s *Simulator) external(t float64, input Bag) {
	s.counts.External++
	e := t - s.timeLast
	s.model.Elapsed = e
	if s.model.ExternalFn != nil {
		s.invoke("external transition", t, func() { s.model.ExternalFn(s.model, e, input) })
	}
}

// confluent resolves an internal event coinciding with input. PDEVS models
// may supply an explicit confluent function; the default, and the CDEVS
// behavior once the parent's select has serialized cross-model ties, is
// the internal transition followed by an external one at zero elapsed
// time.
func (s *Simulator) confluent(t float64, input Bag) {
	if s.env.formalism == PDEVS && s.model.ConfluentFn != nil {
		s.counts.Confluent++
		s.model.Elapsed = 0
		s.invoke("confluent transition", t, func() { s.model.ConfluentFn(s.model, input) })
		return
	}
	s.internal(t)
	s.counts.External++
	s.model.Elapsed = 0
	if s.model.ExternalFn != nil {
		s.invoke("external transition", t, func() { s.model.ExternalFn(s.model, 0, input) })
	}
}

// Teardown runs the optional post-simulation hook.
func (s *Simulator) Teardown() {
	if s.model.PostSimFn != nil {
		s.model.PostSimFn(s.model)
	}
}

// Stats returns the leaf counter node for this simulator.
func (s *Simulator) Stats() *StatsNode {
	return &StatsNode{Name: s.model.Name(), Counts: s.counts}
}

// ta runs the model's time-advance function and validates the result.
func (s *Simulator) ta() float64 {
	s.counts.TimeAdvance++
	var d float64
	s.invoke("time advance", s.timeLast, func() { d = s.model.timeAdvance() })
	if d < 0 || math.IsNaN(d) {
		panic(fmt.Sprintf("time advance of %q returned %v; want a nonnegative number or +Inf",
			s.model.Name(), d))
	}
	return d
}

// invoke runs a user function, wrapping any panic it raises with the model
// name and simulation time. Kernel errors already carrying that context are
// re-raised as is.
func (s *Simulator) invoke(op string, t float64, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*UserTransitionError); ok {
				panic(r)
			}
			panic(&UserTransitionError{Model: s.model.Name(), Op: op, At: t, Cause: r})
		}
	}()
	fn()
}
