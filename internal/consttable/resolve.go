package consttable

import (
	"errors"
	"fmt"
	"strings"

	"orn/internal/dag"
	"orn/internal/diag"
)

// MaxPasses caps fixed-point resolution. Chains deeper than this, and cycles,
// are left with their last computed value.
const MaxPasses = 5

// ErrCircularReference is returned by Resolution.Err in strict mode.
var ErrCircularReference = errors.New("circular constant reference")

// Resolution summarises a Resolve call.
type Resolution struct {
	Passes    int
	Converged bool
	// Unresolved lists names whose value still references other names.
	Unresolved []string
	// Cycles lists names that cannot be ordered because of a reference cycle.
	Cycles []string
	// Order is a dependency-first ordering of every orderable name.
	Order []string
}

// Err reports cycles as an error when strict is set.
func (r Resolution) Err(strict bool) error {
	if !strict || len(r.Cycles) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrCircularReference, strings.Join(r.Cycles, ", "))
}

// Resolve evaluates every value expression in t in place. Each pass evaluates
// all entries against a snapshot taken at the start of the pass; passes repeat
// until nothing changes or MaxPasses is reached. Entries that fail to parse or
// evaluate keep their value for the pass.
//
// Reference problems (self references, unknown names, cycles, values left
// unresolved) are reported to r and never abort resolution.
func Resolve(t *Table, r diag.Reporter) Resolution {
	var res Resolution
	names := t.Names()
	res.Order, res.Cycles = analyze(t, r)

	for res.Passes < MaxPasses {
		res.Passes++
		env := snapshot(t)
		changed := false
		for _, name := range names {
			d := t.entries[name]
			n, err := Eval(d.Value, env)
			if err != nil {
				continue
			}
			if hex := FormatHex(n); hex != d.Value {
				d.Value = hex
				changed = true
			}
		}
		if !changed {
			res.Converged = true
			break
		}
	}

	for _, name := range names {
		d := t.entries[name]
		if IsCanonicalHex(d.Value) || len(References(d.Value)) == 0 {
			continue
		}
		res.Unresolved = append(res.Unresolved, name)
		diag.ReportWarning(r, diag.ConstUnresolved, t.origin, name,
			fmt.Sprintf("constant %s is left unresolved as %q", name, d.Value))
	}
	return res
}

func snapshot(t *Table) Env {
	env := make(Env, len(t.entries))
	for name, d := range t.entries {
		env[name] = d.Value
	}
	return env
}

// analyze builds the reference graph of the unresolved table and returns its
// dependency order and the names caught in cycles.
func analyze(t *Table, r diag.Reporter) (order, cycles []string) {
	names := t.Names()
	nodes := make([]dag.Node, 0, len(names))
	for _, name := range names {
		nodes = append(nodes, dag.Node{Name: name, Refs: References(t.entries[name].Value)})
	}
	stamp := diag.PathReporter{Path: t.origin, Next: r}
	idx := dag.BuildIndex(nodes)
	g := dag.BuildGraph(idx, nodes, stamp)
	topo := dag.ToposortKahn(g)
	dag.ReportCycles(idx, topo, stamp)
	return topo.OrderNames(idx), topo.CycleNames(idx)
}
