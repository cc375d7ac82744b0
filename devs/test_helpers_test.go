package devs

import (
	"io"

	"github.com/sirupsen/logrus"
)

// quietLogger returns a logger whose output is discarded, keeping test
// output readable while still exercising the logging paths.
func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testEnv(f Formalism) *env {
	return &env{formalism: f, log: quietLogger()}
}

// newTestGenerator returns an atomic model that emits its name once at
// time at, then passivates.
func newTestGenerator(name string, at float64) (*AtomicModel, *Port) {
	g := NewAtomic(name)
	out := g.AddOutputPort("out")
	g.Sigma = at
	g.OutputFn = func(m *AtomicModel) {
		m.Post(name, out)
	}
	g.InternalFn = func(m *AtomicModel) {
		m.Sigma = Infinity
	}
	return g, out
}

// receiverLog records what a test receiver saw: one entry per external
// transition holding the payloads of that delivery.
type receiverLog struct {
	batches [][]any
}

func (l *receiverLog) extCalls() int { return len(l.batches) }

func (l *receiverLog) total() int {
	n := 0
	for _, b := range l.batches {
		n += len(b)
	}
	return n
}

// newTestReceiver returns a passive atomic model recording every delivery
// on its single input port.
func newTestReceiver(name string) (*AtomicModel, *Port, *receiverLog) {
	r := NewAtomic(name)
	in := r.AddInputPort("in")
	log := &receiverLog{}
	r.ExternalFn = func(m *AtomicModel, elapsed float64, input Bag) {
		vs := append([]any(nil), input.Values(in)...)
		log.batches = append(log.batches, vs)
	}
	return r, in, log
}

// buildFlatGen2Recv wires G1 and G2 into R under a single coupled model:
// the two generators / one receiver pattern, flat variant.
func buildFlatGen2Recv() (*CoupledModel, *receiverLog) {
	g1, out1 := newTestGenerator("G1", 1)
	g2, out2 := newTestGenerator("G2", 1)
	r, in, log := newTestReceiver("R")

	top := NewCoupled("top")
	top.AddChild(g1)
	top.AddChild(g2)
	top.AddChild(r)
	top.MustCouple(out1, in)
	top.MustCouple(out2, in)
	return top, log
}

// buildHierGen2Recv nests the generators and the receiver one level deep:
// top{ gen{G1,G2} -> recv{R} }.
func buildHierGen2Recv() (*CoupledModel, *receiverLog) {
	g1, out1 := newTestGenerator("G1", 1)
	g2, out2 := newTestGenerator("G2", 1)
	r, in, log := newTestReceiver("R")

	gen := NewCoupled("gen")
	gen.AddChild(g1)
	gen.AddChild(g2)
	genOut1 := gen.AddOutputPort("out1")
	genOut2 := gen.AddOutputPort("out2")
	gen.MustCouple(out1, genOut1)
	gen.MustCouple(out2, genOut2)

	recv := NewCoupled("recv")
	recv.AddChild(r)
	recvIn := recv.AddInputPort("in")
	recv.MustCouple(recvIn, in)

	top := NewCoupled("top")
	top.AddChild(gen)
	top.AddChild(recv)
	top.MustCouple(genOut1, recvIn)
	top.MustCouple(genOut2, recvIn)
	return top, log
}

// mustPanic runs fn and returns the recovered panic value; it fails
// the test when fn returns normally. Usage:
//
//	err := mustPanic(t, func() { ... })
func mustPanic(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, fn func()) (recovered any) {
	t.Helper()
	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Fatalf("expected a panic, got none")
		}
	}()
	fn()
	return nil
}
