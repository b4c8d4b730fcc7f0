package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []NodeID   // линейный порядок (только объявленные узлы)
	Batches [][]NodeID // волны независимых узлов
	Cyclic  bool
	Cycles  []NodeID // узлы, оставшиеся в цикле
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]NodeID, 0, nodeCount),
		Batches: make([][]NodeID, 0),
	}

	active := 0
	for i := range nodeCount {
		if g.Present[i] {
			active++
		}
	}

	current := make([]NodeID, 0, nodeCount)
	for i := range nodeCount {
		if !g.Present[i] || g.Self[i] {
			continue
		}
		if indeg[i] == 0 {
			current = append(current, toNodeID(i))
		}
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]NodeID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]NodeID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 && !g.Self[int(to)] {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if !g.Present[i] {
				continue
			}
			if indeg[i] > 0 || g.Self[i] {
				topo.Cycles = append(topo.Cycles, toNodeID(i))
			}
		}
		slices.Sort(topo.Cycles)
	}

	return topo
}

// OrderNames maps Order back to names.
func (t *Topo) OrderNames(idx Index) []string {
	return idsToNames(idx, t.Order)
}

// CycleNames maps Cycles back to names.
func (t *Topo) CycleNames(idx Index) []string {
	return idsToNames(idx, t.Cycles)
}

func idsToNames(idx Index, ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}

func toNodeID(i int) NodeID {
	id, err := safecast.Conv[NodeID](i)
	if err != nil {
		panic(fmt.Errorf("node id overflow: %w", err))
	}
	return id
}
