package devs

import (
	"fmt"
	"io"
	"sort"
)

// Counts tallies kernel/user interactions for a single processor.
type Counts struct {
	Internal    int // internal transitions
	External    int // external transitions
	Confluent   int // explicit confluent transitions (PDEVS)
	Output      int // output-function invocations
	TimeAdvance int // time-advance invocations
	Select      int // tie-breaks applied (CDEVS coordinators)
	MessagesIn  int // payloads delivered to this processor
	MessagesOut int // payloads yielded upward by this processor
}

// StatsNode aggregates counters over the processor tree, keyed by model
// name. The root coordinator exposes the tree via Stats().
type StatsNode struct {
	Name     string
	Counts   Counts
	Children map[string]*StatsNode
}

// Lookup walks the tree by model names and returns the named node, or nil.
func (n *StatsNode) Lookup(path ...string) *StatsNode {
	node := n
	for _, name := range path {
		if node == nil {
			return nil
		}
		node = node.Children[name]
	}
	return node
}

// Print writes a readable report of the stats tree.
func (n *StatsNode) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Stats ===")
	n.print(w, 0)
}

func (n *StatsNode) print(w io.Writer, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	c := n.Counts
	fmt.Fprintf(w, "%s%-20s int=%d ext=%d con=%d out=%d ta=%d sel=%d in=%d sent=%d\n",
		indent, n.Name, c.Internal, c.External, c.Confluent, c.Output,
		c.TimeAdvance, c.Select, c.MessagesIn, c.MessagesOut)
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		n.Children[name].print(w, depth+1)
	}
}
