package devs

import (
	"fmt"
	"math"
)

// Coordinator routes messages for one coupled model. It owns the child
// processors and a calendar queue keyed by child time_next, so the
// imminent children at each step are found without scanning the tree.
//
// Invariants between steps: time_next equals the minimum child time_next
// and time_last the maximum child time_last.
type Coordinator struct {
	env       *env
	model     *CoupledModel
	children  []Processor
	byModel   map[Model]Processor
	scheduler *CalendarQueue

	// fromPort indexes IC and EOC couplings by source port; eicFrom
	// indexes EIC couplings by the parent input port.
	fromPort map[*Port][]Coupling
	eicFrom  map[*Port][]Coupling

	// pending buffers input routed to children between collect and
	// transition; imminent holds the children popped by Collect.
	pending  map[Processor]Bag
	imminent []Processor

	timeLast float64
	timeNext float64
	counts   Counts
}

func newCoordinator(m *CoupledModel, e *env) *Coordinator {
	c := &Coordinator{
		env:       e,
		model:     m,
		byModel:   make(map[Model]Processor),
		scheduler: NewCalendarQueue(),
		fromPort:  make(map[*Port][]Coupling),
		eicFrom:   make(map[*Port][]Coupling),
		pending:   make(map[Processor]Bag),
	}
	for _, child := range m.Children() {
		p := newProcessor(child, e)
		c.children = append(c.children, p)
		c.byModel[child] = p
	}
	for _, cp := range m.IC() {
		c.fromPort[cp.Src] = append(c.fromPort[cp.Src], cp)
	}
	for _, cp := range m.EOC() {
		c.fromPort[cp.Src] = append(c.fromPort[cp.Src], cp)
	}
	for _, cp := range m.EIC() {
		c.eicFrom[cp.Src] = append(c.eicFrom[cp.Src], cp)
	}
	return c
}

// Model returns the wrapped coupled model.
func (c *Coordinator) Model() Model { return c.model }

// TimeLast returns the maximum time_last over the children.
func (c *Coordinator) TimeLast() float64 { return c.timeLast }

// TimeNext returns the minimum time_next over the children.
func (c *Coordinator) TimeNext() float64 { return c.timeNext }

// Init initializes every child and seeds the scheduler.
func (c *Coordinator) Init(t float64) float64 {
	tl := math.Inf(-1)
	for _, child := range c.children {
		child.Init(t)
		c.scheduler.Enqueue(child)
		if child.TimeLast() > tl {
			tl = child.TimeLast()
		}
	}
	if len(c.children) == 0 {
		tl = t
	}
	c.timeLast = tl
	c.timeNext = c.minNext()
	c.env.log.Debugf("[t=%g] init %q: %d children, time_next=%g",
		t, c.model.Name(), len(c.children), c.timeNext)
	return c.timeNext
}

// Collect pulls the imminent children out of the scheduler, reduces them
// per the formalism, collects their outputs and routes each message:
// EOC-coupled values travel upward in the return, IC-coupled values are
// buffered as pending input for the destination child.
func (c *Coordinator) Collect(t float64) []Message {
	if t != c.timeNext {
		panic(&BadSynchronizationError{Processor: c.model.Name(), At: t,
			TimeLast: c.timeLast, TimeNext: c.timeNext})
	}
	c.imminent = c.imminent[:0]
	for {
		it := c.scheduler.Peek()
		if it == nil || it.TimeNext() != t {
			break
		}
		c.scheduler.Pop()
		c.imminent = append(c.imminent, it.(Processor))
	}
	if c.env.formalism == CDEVS && len(c.imminent) > 1 {
		c.imminent = []Processor{c.applySelect(t)}
	}

	var up []Message
	for _, child := range c.imminent {
		for _, msg := range child.Collect(t) {
			up = append(up, c.route(msg)...)
		}
	}
	c.counts.MessagesOut += len(up)
	return up
}

// applySelect invokes the model's tie-break on the current imminent set
// and re-enqueues the losers; they stay imminent for the next round.
func (c *Coordinator) applySelect(t float64) Processor {
	models := make([]Model, len(c.imminent))
	for i, p := range c.imminent {
		models[i] = p.Model()
	}
	c.counts.Select++
	chosen := unwrap(c.model.selectImminent(models))
	sel, ok := c.byModel[chosen]
	if !ok {
		panic(fmt.Sprintf("select of %q returned %q, which is not a child",
			c.model.Name(), chosen.Name()))
	}
	found := false
	for _, p := range c.imminent {
		if p == sel {
			found = true
			continue
		}
		c.scheduler.Enqueue(p)
	}
	if !found {
		panic(fmt.Sprintf("select of %q returned %q, which is not imminent at t=%g",
			c.model.Name(), chosen.Name(), t))
	}
	return sel
}

// route fans one child output message through the couplings indexed on its
// port. The translated EOC messages are returned for the parent; IC
// messages land in the pending bag of the destination child.
func (c *Coordinator) route(msg Message) []Message {
	var up []Message
	for _, cp := range c.fromPort[msg.Port] {
		switch cp.Kind {
		case EOC:
			up = append(up, Message{Value: msg.Value, Port: cp.Dst})
		case IC:
			dst := c.byModel[cp.Dst.host]
			bag := c.pending[dst]
			if bag == nil {
				bag = make(Bag)
				c.pending[dst] = bag
			}
			bag.Add(cp.Dst, msg.Value)
		}
	}
	return up
}

// Transition fans the external input down the EIC couplings, then sends a
// transition to every activated child: the imminents from Collect plus any
// child holding pending input. Activated children are re-keyed in the
// scheduler under their new time_next.
func (c *Coordinator) Transition(t float64, input Bag) {
	if t < c.timeLast || t > c.timeNext {
		panic(&BadSynchronizationError{Processor: c.model.Name(), At: t,
			TimeLast: c.timeLast, TimeNext: c.timeNext})
	}
	for p := range input {
		if p.host != Model(c.model) {
			panic(&InvalidPortHostError{Port: p, Model: c.model})
		}
		if p.dir != Input {
			panic(&InvalidPortTypeError{Port: p, Want: Input})
		}
	}
	c.counts.MessagesIn += input.Size()
	// Fan out in port declaration order to keep bag composition
	// deterministic when two parent ports feed one child port.
	for _, p := range c.model.InputPorts() {
		vs := input[p]
		if len(vs) == 0 {
			continue
		}
		for _, cp := range c.eicFrom[p] {
			dst := c.byModel[cp.Dst.host]
			bag := c.pending[dst]
			if bag == nil {
				bag = make(Bag)
				c.pending[dst] = bag
			}
			bag.Add(cp.Dst, vs...)
		}
	}

	imm := make(map[Processor]bool, len(c.imminent))
	for _, p := range c.imminent {
		imm[p] = true
	}
	for _, child := range c.children {
		bag := c.pending[child]
		if !imm[child] && bag.Empty() {
			continue
		}
		if !imm[child] {
			// Still resident under its old time_next; re-key it.
			c.scheduler.Delete(child)
		}
		child.Transition(t, bag)
		c.scheduler.Enqueue(child)
		delete(c.pending, child)
	}
	c.imminent = c.imminent[:0]

	c.timeLast = t
	c.timeNext = c.minNext()
	c.env.log.Debugf("[t=%g] transition %q: time_next=%g", t, c.model.Name(), c.timeNext)
}

// Teardown tears down every child.
func (c *Coordinator) Teardown() {
	for _, child := range c.children {
		child.Teardown()
	}
}

// Stats aggregates the child counter subtrees under this coordinator.
func (c *Coordinator) Stats() *StatsNode {
	n := &StatsNode{
		Name:     c.model.Name(),
		Counts:   c.counts,
		Children: make(map[string]*StatsNode, len(c.children)),
	}
	for _, child := range c.children {
		s := child.Stats()
		n.Children[s.Name] = s
	}
	return n
}

func (c *Coordinator) minNext() float64 {
	if it := c.scheduler.Peek(); it != nil {
		return it.TimeNext()
	}
	return Infinity
}
