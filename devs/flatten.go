package devs

// Flatten returns a single-level coupled model equivalent to root: its
// children are the transitively reachable atomic models, and its couplings
// compose the original EIC/EOC/IC chains end to end. Atomic models are
// shared, not copied, so their ports and function tables are untouched;
// the flat model mirrors the root's own ports under the same names.
//
// The flat model keeps the root's select function. Inner selects become
// unreachable: their tie sets merge into the root's.
func Flatten(root *CoupledModel) *CoupledModel {
	flat := NewCoupled(root.Name())
	flat.SelectFn = root.SelectFn

	atomics := collectAtomics(root)
	for _, m := range atomics {
		flat.AddChild(m)
	}

	// Mirror the root's external interface.
	portMap := make(map[*Port]*Port)
	for _, p := range root.InputPorts() {
		portMap[p] = flat.AddInputPort(p.Name())
	}
	for _, p := range root.OutputPorts() {
		portMap[p] = flat.AddOutputPort(p.Name())
	}

	bySrc := couplingsBySource(root)

	// Root inputs reach atomic inputs through chained EICs.
	for _, p := range root.InputPorts() {
		for _, dst := range closure(bySrc, p, root) {
			flat.MustCouple(portMap[p], dst)
		}
	}
	// Atomic outputs reach sibling atomic inputs (composed IC) or root
	// outputs (composed EOC).
	for _, m := range atomics {
		for _, p := range m.OutputPorts() {
			for _, dst := range closure(bySrc, p, root) {
				if mapped, ok := portMap[dst]; ok {
					flat.MustCouple(p, mapped)
				} else {
					flat.MustCouple(p, dst)
				}
			}
		}
	}
	return flat
}

// collectAtomics gathers the transitively reachable atomic models in
// depth-first declaration order.
func collectAtomics(c *CoupledModel) []*AtomicModel {
	var out []*AtomicModel
	for _, child := range c.Children() {
		switch m := child.(type) {
		case *AtomicModel:
			out = append(out, m)
		case *CoupledModel:
			out = append(out, collectAtomics(m)...)
		}
	}
	return out
}

// couplingsBySource indexes every coupling in the tree by its source port.
func couplingsBySource(c *CoupledModel) map[*Port][]Coupling {
	bySrc := make(map[*Port][]Coupling)
	var walk func(cm *CoupledModel)
	walk = func(cm *CoupledModel) {
		for _, list := range [][]Coupling{cm.EIC(), cm.IC(), cm.EOC()} {
			for _, cp := range list {
				bySrc[cp.Src] = append(bySrc[cp.Src], cp)
			}
		}
		for _, child := range cm.Children() {
			if inner, ok := child.(*CoupledModel); ok {
				walk(inner)
			}
		}
	}
	walk(c)
	return bySrc
}

// closure follows coupling edges from start until it reaches terminal
// ports: atomic input ports, or output ports of root itself. Intermediate
// coupled-model ports are traversed and dropped. The port graph is acyclic
// (input chains only descend, output chains only ascend or hop to a
// sibling input), and a terminal appears once per distinct path so fan-out
// multiplicity survives flattening.
func closure(bySrc map[*Port][]Coupling, start *Port, root *CoupledModel) []*Port {
	var terminals []*Port
	frontier := []*Port{start}
	for len(frontier) > 0 {
		p := frontier[0]
		frontier = frontier[1:]
		for _, cp := range bySrc[p] {
			d := cp.Dst
			if _, atomic := d.host.(*AtomicModel); atomic || d.host == Model(root) {
				terminals = append(terminals, d)
				continue
			}
			frontier = append(frontier, d)
		}
	}
	return terminals
}
