package devs

import "fmt"

// Model is a node in the static model tree: an AtomicModel leaf or a
// CoupledModel interior node. Models own their ports; the runtime state
// lives in the processor tree built from them.
type Model interface {
	Name() string
	InputPorts() []*Port
	OutputPorts() []*Port
	InputPort(name string) (*Port, error)
	OutputPort(name string) (*Port, error)
}

type atomicCarrier interface{ atomicModel() *AtomicModel }

type coupledCarrier interface{ coupledModel() *CoupledModel }

// unwrap resolves wrapper types that embed *AtomicModel or *CoupledModel
// (the usual way user models are written) to the underlying kernel model,
// so wrappers can be passed anywhere a Model is expected.
func unwrap(m Model) Model {
	switch t := m.(type) {
	case atomicCarrier:
		return t.atomicModel()
	case coupledCarrier:
		return t.coupledModel()
	}
	return m
}

// base carries the name and port sets shared by atomic and coupled models.
// Port slices keep declaration order; the kernel iterates them in that
// order everywhere so runs stay deterministic.
type base struct {
	name      string
	in, out   []*Port
	inByName  map[string]*Port
	outByName map[string]*Port
}

func newBase(name string) base {
	return base{
		name:      name,
		inByName:  make(map[string]*Port),
		outByName: make(map[string]*Port),
	}
}

func (b *base) Name() string { return b.name }

// InputPorts returns the input ports in declaration order.
func (b *base) InputPorts() []*Port { return b.in }

// OutputPorts returns the output ports in declaration order.
func (b *base) OutputPorts() []*Port { return b.out }

// addPort registers a new port on host. Duplicate names per direction are a
// programmer error.
func (b *base) addPort(host Model, dir Direction, name string) *Port {
	byName := b.inByName
	if dir == Output {
		byName = b.outByName
	}
	if _, ok := byName[name]; ok {
		panic(fmt.Sprintf("model %q already has an %s port %q", b.name, dir, name))
	}
	p := &Port{host: host, dir: dir, name: name}
	byName[name] = p
	if dir == Input {
		b.in = append(b.in, p)
	} else {
		b.out = append(b.out, p)
	}
	return p
}

func (b *base) port(host Model, dir Direction, name string) (*Port, error) {
	byName := b.inByName
	if dir == Output {
		byName = b.outByName
	}
	p, ok := byName[name]
	if !ok {
		return nil, &UnknownPortError{Model: host, Dir: dir, Name: name}
	}
	return p, nil
}
