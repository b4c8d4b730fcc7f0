package dag

import (
	"fmt"
	"slices"
	"strings"

	"orn/internal/diag"
)

// Graph stores edges from a dependency to its dependents, so that Kahn's
// order lists referenced names before the names that use them.
type Graph struct {
	Edges   [][]NodeID // Edges[dep] = []dependents
	Indeg   []int      // входящие степени для Kahn (только присутствующие узлы)
	Present []bool     // узел объявлен, а не только упомянут
	Self    []bool     // узел ссылается сам на себя
}

// BuildGraph wires every node to the names it references. Self references
// and references to undeclared names are reported; a self reference also
// marks the node so that ToposortKahn treats it as cyclic.
func BuildGraph(idx Index, nodes []Node, r diag.Reporter) Graph {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]NodeID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
		Self:    make([]bool, nodeCount),
	}
	for _, node := range nodes {
		if id, ok := idx.NameToID[node.Name]; ok {
			g.Present[int(id)] = true
		}
	}

	for _, node := range nodes {
		from, ok := idx.NameToID[node.Name]
		if !ok {
			continue
		}
		seen := make(map[NodeID]struct{}, len(node.Refs))
		for _, ref := range node.Refs {
			to, ok := idx.NameToID[ref]
			if !ok {
				continue
			}
			if to == from {
				g.Self[int(from)] = true
				diag.ReportWarning(r, diag.ConstSelfReference, "", node.Name,
					fmt.Sprintf("constant %s references itself", node.Name))
				continue
			}
			if !g.Present[int(to)] {
				diag.ReportWarning(r, diag.ConstUnknownReference, "", node.Name,
					fmt.Sprintf("constant %s references unknown name %s", node.Name, ref))
				continue
			}
			if _, dup := seen[to]; dup {
				continue
			}
			seen[to] = struct{}{}
			g.Edges[int(to)] = append(g.Edges[int(to)], from)
			g.Indeg[int(from)]++
		}
	}
	for i := range g.Edges {
		if len(g.Edges[i]) > 1 {
			slices.Sort(g.Edges[i])
		}
	}
	return g
}

// ReportCycles emits one diagnostic per node left in a cycle.
func ReportCycles(idx Index, topo *Topo, r diag.Reporter) {
	if topo == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := topo.CycleNames(idx)
	summary := strings.Join(names, ", ")
	for _, name := range names {
		msg := fmt.Sprintf("circular constant reference: %s cannot be ordered (unordered set: %s)", name, summary)
		diag.ReportWarning(r, diag.ConstCycle, "", name, msg)
	}
}
