package devs

import "fmt"

// CoupledModel is an interior node of the model tree: a named set of child
// models wired together by couplings. Children keep declaration order; the
// kernel relies on that order wherever it iterates over them.
type CoupledModel struct {
	base

	children []Model
	byName   map[string]Model

	eic []Coupling
	eoc []Coupling
	ic  []Coupling

	// SelectFn breaks CDEVS ties: given the imminent children it returns
	// the one allowed to fire this round. When nil the first imminent in
	// declaration order wins. Unused under PDEVS.
	SelectFn func(imminents []Model) Model
}

// NewCoupled creates an empty coupled model.
func NewCoupled(name string) *CoupledModel {
	return &CoupledModel{base: newBase(name), byName: make(map[string]Model)}
}

// AddInputPort declares a named input port.
func (c *CoupledModel) AddInputPort(name string) *Port {
	return c.addPort(c, Input, name)
}

// AddOutputPort declares a named output port.
func (c *CoupledModel) AddOutputPort(name string) *Port {
	return c.addPort(c, Output, name)
}

// InputPort looks up an input port by name.
func (c *CoupledModel) InputPort(name string) (*Port, error) {
	return c.port(c, Input, name)
}

// OutputPort looks up an output port by name.
func (c *CoupledModel) OutputPort(name string) (*Port, error) {
	return c.port(c, Output, name)
}

// AddChild attaches a model as a direct child. Wrapper types embedding
// *AtomicModel or *CoupledModel are resolved to the kernel model they
// carry. Child names must be unique within the parent.
func (c *CoupledModel) AddChild(m Model) {
	m = unwrap(m)
	if _, ok := c.byName[m.Name()]; ok {
		panic(fmt.Sprintf("coupled model %q already has a child %q", c.name, m.Name()))
	}
	c.byName[m.Name()] = m
	c.children = append(c.children, m)
}

// Children returns the direct children in declaration order.
func (c *CoupledModel) Children() []Model { return c.children }

// Child looks up a direct child by name.
func (c *CoupledModel) Child(name string) (Model, error) {
	m, ok := c.byName[name]
	if !ok {
		return nil, &NoSuchChildError{Parent: c, Name: name}
	}
	return m, nil
}

// EIC returns the external input couplings.
func (c *CoupledModel) EIC() []Coupling { return c.eic }

// EOC returns the external output couplings.
func (c *CoupledModel) EOC() []Coupling { return c.eoc }

// IC returns the internal couplings.
func (c *CoupledModel) IC() []Coupling { return c.ic }

// Couple adds a directed coupling from src to dst, classifying it as EIC,
// EOC or IC from the endpoints' owners. Endpoints inconsistent with the
// parent/child relation are rejected.
func (c *CoupledModel) Couple(src, dst *Port) error {
	srcSelf := src.host == Model(c)
	dstSelf := dst.host == Model(c)
	srcChild := c.isChild(src.host)
	dstChild := c.isChild(dst.host)

	switch {
	case srcSelf && src.dir == Input && dstChild && dst.dir == Input:
		c.eic = append(c.eic, Coupling{Kind: EIC, Src: src, Dst: dst})
	case srcChild && src.dir == Output && dstSelf && dst.dir == Output:
		c.eoc = append(c.eoc, Coupling{Kind: EOC, Src: src, Dst: dst})
	case srcChild && src.dir == Output && dstChild && dst.dir == Input:
		if src.host == dst.host {
			return fmt.Errorf("coupling %s -> %s: a model may not feed itself directly", src, dst)
		}
		c.ic = append(c.ic, Coupling{Kind: IC, Src: src, Dst: dst})
	default:
		return fmt.Errorf("coupling %s -> %s is not a valid EIC, EOC or IC of %q", src, dst, c.name)
	}
	return nil
}

// MustCouple is Couple for static model construction; it panics on an
// invalid coupling.
func (c *CoupledModel) MustCouple(src, dst *Port) {
	if err := c.Couple(src, dst); err != nil {
		panic(err)
	}
}

func (c *CoupledModel) coupledModel() *CoupledModel { return c }

func (c *CoupledModel) isChild(m Model) bool {
	return c.byName[m.Name()] == m
}

// selectImminent applies the tie-break function, declaration order default.
func (c *CoupledModel) selectImminent(imminents []Model) Model {
	if c.SelectFn != nil {
		return c.SelectFn(imminents)
	}
	for _, child := range c.children {
		for _, m := range imminents {
			if m == child {
				return m
			}
		}
	}
	return imminents[0]
}
