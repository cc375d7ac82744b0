package devs

import "fmt"

// Direction tells whether a port accepts input or emits output.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Port is a typed endpoint identified by its owning model, a direction and
// a name. During a simulation step a port buffers the values written to it:
// output ports are filled by the owning model's output function and drained
// by the kernel during collect; input ports are filled by the routing
// coordinator and drained after the transition.
//
// In CDEVS a port carries at most one pending value per step; in PDEVS it
// carries a bag.
type Port struct {
	host   Model
	dir    Direction
	name   string
	values []any
}

// Name returns the port name, unique per (model, direction).
func (p *Port) Name() string { return p.name }

// Host returns the unique model owning the port.
func (p *Port) Host() Model { return p.host }

// Direction returns Input or Output.
func (p *Port) Direction() Direction { return p.dir }

func (p *Port) String() string {
	return fmt.Sprintf("%s:%s(%s)", p.host.Name(), p.name, p.dir)
}

func (p *Port) post(v any) { p.values = append(p.values, v) }

func (p *Port) clear() { p.values = p.values[:0] }

// Message is a value together with the port it traverses. The direction of
// travel is implied by the port.
type Message struct {
	Value any
	Port  *Port
}

func (m Message) String() string {
	return fmt.Sprintf("%v@%s", m.Value, m.Port)
}

// Bag maps input ports to the payloads pending on them. Values per port
// keep their arrival order; in PDEVS that order follows the deterministic
// collect order of the sending models.
type Bag map[*Port][]any

// Add appends values to the sequence pending on p.
func (b Bag) Add(p *Port, vs ...any) {
	b[p] = append(b[p], vs...)
}

// Values returns the payload sequence pending on p.
func (b Bag) Values(p *Port) []any { return b[p] }

// Value returns the single pending payload on p, the scalar CDEVS view.
// It returns nil when nothing is pending.
func (b Bag) Value(p *Port) any {
	vs := b[p]
	if len(vs) == 0 {
		return nil
	}
	return vs[0]
}

// Size returns the total number of pending payloads across all ports.
func (b Bag) Size() int {
	n := 0
	for _, vs := range b {
		n += len(vs)
	}
	return n
}

// Empty reports whether the bag holds no payload at all.
func (b Bag) Empty() bool { return b.Size() == 0 }

// CouplingKind classifies a coupling by the topology of its endpoints.
type CouplingKind int

const (
	// EIC couples a coupled model's input port to a child's input port.
	EIC CouplingKind = iota
	// EOC couples a child's output port to the coupled model's output port.
	EOC
	// IC couples a child's output port to a sibling child's input port.
	IC
)

func (k CouplingKind) String() string {
	switch k {
	case EIC:
		return "EIC"
	case EOC:
		return "EOC"
	case IC:
		return "IC"
	default:
		return fmt.Sprintf("CouplingKind(%d)", int(k))
	}
}

// Coupling is a directed edge between two ports of a coupled model's
// interface or its children. Kind is derived from the endpoints when the
// coupling is added, never supplied by the user.
type Coupling struct {
	Kind CouplingKind
	Src  *Port
	Dst  *Port
}

func (c Coupling) String() string {
	return fmt.Sprintf("%s %s -> %s", c.Kind, c.Src, c.Dst)
}
