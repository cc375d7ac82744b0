package devs

import (
	"testing"
)

func TestSimulator_Init_SeedsClockWindow(t *testing.T) {
	// GIVEN a model with sigma 2 and half a unit already elapsed
	m := NewAtomic("m")
	m.Sigma = 2
	m.Elapsed = 0.5
	s := newSimulator(m, testEnv(PDEVS))

	// WHEN initializing at t=0
	tn := s.Init(0)

	// THEN the window is offset by the elapsed time
	if s.TimeLast() != -0.5 {
		t.Errorf("time_last: got %g, want -0.5", s.TimeLast())
	}
	if tn != 1.5 || s.TimeNext() != 1.5 {
		t.Errorf("time_next: got %g, want 1.5", tn)
	}
}

func TestSimulator_TimeAdvanceFn_OverridesSigma(t *testing.T) {
	// GIVEN a model whose time-advance function ignores Sigma
	m := NewAtomic("m")
	m.Sigma = 3
	m.TimeAdvanceFn = func(m *AtomicModel) float64 { return 7 }
	s := newSimulator(m, testEnv(PDEVS))

	// WHEN initializing
	s.Init(0)

	// THEN ta() is authoritative
	if s.TimeNext() != 7 {
		t.Errorf("time_next: got %g, want 7 (from TimeAdvanceFn, not Sigma)", s.TimeNext())
	}
}

func TestSimulator_Collect_HarvestsAndClearsOutputs(t *testing.T) {
	// GIVEN an imminent model posting two values
	m := NewAtomic("m")
	out := m.AddOutputPort("out")
	m.Sigma = 1
	m.OutputFn = func(m *AtomicModel) {
		m.Post("a", out)
		m.Post("b", out)
	}
	s := newSimulator(m, testEnv(PDEVS))
	s.Init(0)

	// WHEN collecting at time_next
	msgs := s.Collect(1)

	// THEN both values come back in post order and the buffer is cleared
	if len(msgs) != 2 {
		t.Fatalf("messages: got %d, want 2", len(msgs))
	}
	if msgs[0].Value != "a" || msgs[1].Value != "b" {
		t.Errorf("message order: got %v,%v want a,b", msgs[0].Value, msgs[1].Value)
	}
	if len(out.values) != 0 {
		t.Errorf("output buffer not cleared: %v", out.values)
	}
}

func TestSimulator_Collect_WrongTime_Panics(t *testing.T) {
	m := NewAtomic("m")
	m.Sigma = 5
	s := newSimulator(m, testEnv(PDEVS))
	s.Init(0)

	rec := mustPanic(t, func() { s.Collect(3) })
	if _, ok := rec.(*BadSynchronizationError); !ok {
		t.Fatalf("panic value: got %T, want *BadSynchronizationError", rec)
	}
}

func TestSimulator_Internal_AtTimeNext(t *testing.T) {
	// GIVEN an imminent model
	m := NewAtomic("m")
	m.Sigma = 2
	ints := 0
	m.InternalFn = func(m *AtomicModel) {
		ints++
		m.Sigma = 4
	}
	s := newSimulator(m, testEnv(PDEVS))
	s.Init(0)

	// WHEN transitioning at time_next with no input
	s.Transition(2, nil)

	// THEN the internal transition fires and the window advances
	if ints != 1 {
		t.Errorf("internal calls: got %d, want 1", ints)
	}
	if s.TimeLast() != 2 || s.TimeNext() != 6 {
		t.Errorf("window: got (%g,%g), want (2,6)", s.TimeLast(), s.TimeNext())
	}
}

func TestSimulator_External_ElapsedAndScalarView(t *testing.T) {
	// GIVEN a passive model
	m := NewAtomic("m")
	in := m.AddInputPort("in")
	var gotElapsed float64
	var gotScalar any
	m.ExternalFn = func(m *AtomicModel, elapsed float64, input Bag) {
		gotElapsed = elapsed
		gotScalar = m.Retrieve(in)
		m.Sigma = 1
	}
	s := newSimulator(m, testEnv(CDEVS))
	s.Init(0)

	// WHEN input arrives at t=3
	bag := make(Bag)
	bag.Add(in, 42)
	s.Transition(3, bag)

	// THEN elapsed is measured from time_last and Retrieve sees the value
	if gotElapsed != 3 {
		t.Errorf("elapsed: got %g, want 3", gotElapsed)
	}
	if gotScalar != 42 {
		t.Errorf("Retrieve: got %v, want 42", gotScalar)
	}
	if s.TimeNext() != 4 {
		t.Errorf("time_next: got %g, want 4", s.TimeNext())
	}
	// AND the input buffer is cleared after the transition
	if len(in.values) != 0 {
		t.Errorf("input buffer not cleared: %v", in.values)
	}
}

func TestSimulator_PDEVS_ExplicitConfluent(t *testing.T) {
	// GIVEN a PDEVS model with its own confluent function
	m := NewAtomic("m")
	in := m.AddInputPort("in")
	ints, exts, cons := 0, 0, 0
	m.InternalFn = func(m *AtomicModel) { ints++ }
	m.ExternalFn = func(m *AtomicModel, e float64, b Bag) { exts++ }
	m.ConfluentFn = func(m *AtomicModel, b Bag) {
		cons++
		m.Sigma = Infinity
	}
	m.Sigma = 1
	s := newSimulator(m, testEnv(PDEVS))
	s.Init(0)

	// WHEN input coincides with time_next
	bag := make(Bag)
	bag.Add(in, "x")
	s.Transition(1, bag)

	// THEN only the confluent function runs
	if cons != 1 || ints != 0 || exts != 0 {
		t.Errorf("calls (con,int,ext): got (%d,%d,%d), want (1,0,0)", cons, ints, exts)
	}
}

func TestSimulator_PDEVS_DefaultConfluent_IntThenExt(t *testing.T) {
	// GIVEN a PDEVS model without a confluent function
	m := NewAtomic("m")
	in := m.AddInputPort("in")
	var order []string
	var extElapsed float64 = -1
	m.InternalFn = func(m *AtomicModel) {
		order = append(order, "int")
		m.Sigma = Infinity
	}
	m.ExternalFn = func(m *AtomicModel, e float64, b Bag) {
		order = append(order, "ext")
		extElapsed = e
	}
	m.Sigma = 1
	s := newSimulator(m, testEnv(PDEVS))
	s.Init(0)

	// WHEN input coincides with time_next
	bag := make(Bag)
	bag.Add(in, "x")
	s.Transition(1, bag)

	// THEN the internal transition runs first, then external at e=0
	if len(order) != 2 || order[0] != "int" || order[1] != "ext" {
		t.Fatalf("order: got %v, want [int ext]", order)
	}
	if extElapsed != 0 {
		t.Errorf("confluent external elapsed: got %g, want 0", extElapsed)
	}
}

func TestSimulator_CDEVS_IgnoresConfluentFn(t *testing.T) {
	// GIVEN a CDEVS model that happens to define a confluent function
	m := NewAtomic("m")
	in := m.AddInputPort("in")
	ints, exts, cons := 0, 0, 0
	m.InternalFn = func(m *AtomicModel) { ints++; m.Sigma = Infinity }
	m.ExternalFn = func(m *AtomicModel, e float64, b Bag) { exts++ }
	m.ConfluentFn = func(m *AtomicModel, b Bag) { cons++ }
	m.Sigma = 1
	s := newSimulator(m, testEnv(CDEVS))
	s.Init(0)

	// WHEN the model is collected (selected) and input coincides
	s.Collect(1)
	bag := make(Bag)
	bag.Add(in, "x")
	s.Transition(1, bag)

	// THEN CDEVS uses the serialized int-then-ext rule
	if cons != 0 || ints != 1 || exts != 1 {
		t.Errorf("calls (con,int,ext): got (%d,%d,%d), want (0,1,1)", cons, ints, exts)
	}
}

func TestSimulator_CDEVS_NonSelectedImminent_ExternalOnly(t *testing.T) {
	// GIVEN a CDEVS model imminent at t=1 that was not selected (its
	// output was never collected) but receives input at exactly t=1
	m := NewAtomic("m")
	in := m.AddInputPort("in")
	ints, exts := 0, 0
	m.InternalFn = func(m *AtomicModel) { ints++; m.Sigma = Infinity }
	m.ExternalFn = func(m *AtomicModel, e float64, b Bag) { exts++ }
	m.Sigma = 1
	s := newSimulator(m, testEnv(CDEVS))
	s.Init(0)

	// WHEN the input arrives without a preceding collect
	bag := make(Bag)
	bag.Add(in, "x")
	s.Transition(1, bag)

	// THEN only the external transition fires; the internal event stays
	// deferred under the recomputed time advance
	if ints != 0 || exts != 1 {
		t.Errorf("calls (int,ext): got (%d,%d), want (0,1)", ints, exts)
	}
	if s.TimeNext() != 2 {
		t.Errorf("time_next: got %g, want 2", s.TimeNext())
	}
}

func TestSimulator_Transition_NoInputBeforeTimeNext_Panics(t *testing.T) {
	m := NewAtomic("m")
	m.Sigma = 5
	s := newSimulator(m, testEnv(PDEVS))
	s.Init(0)

	rec := mustPanic(t, func() { s.Transition(2, nil) })
	if _, ok := rec.(*BadSynchronizationError); !ok {
		t.Fatalf("panic value: got %T, want *BadSynchronizationError", rec)
	}
}

func TestSimulator_Transition_PastTimeNext_Panics(t *testing.T) {
	m := NewAtomic("m")
	in := m.AddInputPort("in")
	m.Sigma = 1
	s := newSimulator(m, testEnv(PDEVS))
	s.Init(0)

	bag := make(Bag)
	bag.Add(in, 1)
	rec := mustPanic(t, func() { s.Transition(2, bag) })
	if _, ok := rec.(*BadSynchronizationError); !ok {
		t.Fatalf("panic value: got %T, want *BadSynchronizationError", rec)
	}
}

func TestSimulator_NegativeTimeAdvance_Panics(t *testing.T) {
	m := NewAtomic("m")
	m.TimeAdvanceFn = func(m *AtomicModel) float64 { return -1 }
	s := newSimulator(m, testEnv(PDEVS))

	mustPanic(t, func() { s.Init(0) })
}

func TestSimulator_UserPanic_WrappedWithContext(t *testing.T) {
	// GIVEN a model whose internal transition blows up
	m := NewAtomic("fragile")
	m.Sigma = 1
	m.InternalFn = func(m *AtomicModel) { panic("user bug") }
	s := newSimulator(m, testEnv(PDEVS))
	s.Init(0)

	// WHEN it fires
	rec := mustPanic(t, func() { s.Transition(1, nil) })

	// THEN the panic names the model, the operation and the time
	ute, ok := rec.(*UserTransitionError)
	if !ok {
		t.Fatalf("panic value: got %T, want *UserTransitionError", rec)
	}
	if ute.Model != "fragile" || ute.At != 1 || ute.Cause != "user bug" {
		t.Errorf("wrapped error: got %+v", ute)
	}
}

func TestSimulator_Teardown_RunsHook(t *testing.T) {
	m := NewAtomic("m")
	ran := false
	m.PostSimFn = func(m *AtomicModel) { ran = true }
	s := newSimulator(m, testEnv(PDEVS))
	s.Init(0)
	s.Teardown()

	if !ran {
		t.Error("post-simulation hook did not run")
	}
}

func TestSimulator_Stats_CountsUserCalls(t *testing.T) {
	// GIVEN a model that fires once and then receives input
	m := NewAtomic("m")
	in := m.AddInputPort("in")
	out := m.AddOutputPort("out")
	m.Sigma = 1
	m.OutputFn = func(m *AtomicModel) { m.Post(1, out) }
	m.InternalFn = func(m *AtomicModel) { m.Sigma = Infinity }
	m.ExternalFn = func(m *AtomicModel, e float64, b Bag) {}
	s := newSimulator(m, testEnv(PDEVS))
	s.Init(0)
	s.Collect(1)
	s.Transition(1, nil)
	bag := make(Bag)
	bag.Add(in, "x")
	s.Transition(5, bag)

	// THEN the counters reflect every invocation
	c := s.Stats().Counts
	if c.Internal != 1 || c.External != 1 || c.Output != 1 {
		t.Errorf("counts (int,ext,out): got (%d,%d,%d), want (1,1,1)", c.Internal, c.External, c.Output)
	}
	if c.MessagesOut != 1 || c.MessagesIn != 1 {
		t.Errorf("messages (out,in): got (%d,%d), want (1,1)", c.MessagesOut, c.MessagesIn)
	}
	if c.TimeAdvance != 3 {
		t.Errorf("time-advance calls: got %d, want 3", c.TimeAdvance)
	}
}
