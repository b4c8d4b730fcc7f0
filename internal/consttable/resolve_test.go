package consttable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orn/internal/diag"
)

func values(t *Table) map[string]string {
	out := make(map[string]string, t.Len())
	for _, name := range t.Names() {
		d, _ := t.Get(name)
		out[name] = d.Value
	}
	return out
}

func TestResolveChain(t *testing.T) {
	table := NewTable(
		Definition{Name: "A", Type: "u64", Value: "1"},
		Definition{Name: "B", Type: "u64", Value: "A + 1"},
		Definition{Name: "C", Type: "u64", Value: "B * 2"},
	)

	res := Resolve(table, nil)

	assert.Equal(t, map[string]string{"A": "0x1", "B": "0x2", "C": "0x4"}, values(table))
	assert.True(t, res.Converged)
	assert.Empty(t, res.Unresolved)
	assert.Empty(t, res.Cycles)
	assert.Equal(t, []string{"A", "B", "C"}, res.Order)
}

func TestResolveSelfReferenceTerminates(t *testing.T) {
	table := NewTable(Definition{Name: "A", Type: "u64", Value: "A + 1"})
	bag := diag.NewBag(16)

	res := Resolve(table, diag.BagReporter{Bag: bag})

	assert.Equal(t, "A + 1", values(table)["A"])
	assert.Equal(t, []string{"A"}, res.Unresolved)
	assert.Equal(t, []string{"A"}, res.Cycles)
	assert.Len(t, bag.Filter(diag.ConstSelfReference), 1)
	assert.Len(t, bag.Filter(diag.ConstUnresolved), 1)
	require.ErrorIs(t, res.Err(true), ErrCircularReference)
	assert.NoError(t, res.Err(false))
}

func TestResolveMutualCycle(t *testing.T) {
	table := NewTable(
		Definition{Name: "A", Type: "u64", Value: "B + 1"},
		Definition{Name: "B", Type: "u64", Value: "A + 1"},
		Definition{Name: "C", Type: "u64", Value: "7"},
	)

	res := Resolve(table, nil)

	assert.Equal(t, []string{"A", "B"}, res.Cycles)
	assert.Equal(t, []string{"A", "B"}, res.Unresolved)
	assert.Equal(t, "0x7", values(table)["C"])
	assert.True(t, res.Converged)
}

func TestResolveStopsAtPassCap(t *testing.T) {
	// Each pass resolves one link of the chain because names resolve only
	// against literal snapshot values.
	table := NewTable(
		Definition{Name: "L0", Type: "u64", Value: "1 + 0"},
		Definition{Name: "L1", Type: "u64", Value: "L0 + 1"},
		Definition{Name: "L2", Type: "u64", Value: "L1 + 1"},
		Definition{Name: "L3", Type: "u64", Value: "L2 + 1"},
		Definition{Name: "L4", Type: "u64", Value: "L3 + 1"},
		Definition{Name: "L5", Type: "u64", Value: "L4 + 1"},
		Definition{Name: "L6", Type: "u64", Value: "L5 + 1"},
	)

	res := Resolve(table, nil)

	assert.Equal(t, MaxPasses, res.Passes)
	assert.False(t, res.Converged)
	got := values(table)
	assert.Equal(t, "0x5", got["L4"])
	assert.Equal(t, "L4 + 1", got["L5"])
	assert.Equal(t, "L5 + 1", got["L6"])
	assert.Equal(t, []string{"L5", "L6"}, res.Unresolved)
	assert.Empty(t, res.Cycles)
}

func TestResolveLeavesNonNumericLiterals(t *testing.T) {
	table := NewTable(
		Definition{Name: "NAME", Type: "vector<u8>", Value: `b"orn"`},
		Definition{Name: "ENABLED", Type: "bool", Value: "true"},
		Definition{Name: "ADMIN", Type: "address", Value: "@0x1"},
		Definition{Name: "DEC", Type: "u64", Value: "255"},
		Definition{Name: "HEX", Type: "u64", Value: "0x0"},
	)

	res := Resolve(table, nil)

	assert.Equal(t, map[string]string{
		"NAME":    `b"orn"`,
		"ENABLED": "true",
		"ADMIN":   "@0x1",
		"DEC":     "0xff",
		"HEX":     "0x0",
	}, values(table))
	assert.Empty(t, res.Unresolved)
}

func TestEval(t *testing.T) {
	env := Env{"A": "0x10", "B": "A + 1", "BIG": "0xffffffffffffffffffffffffffffffff"}
	cases := []struct {
		expr    string
		want    string
		wantErr bool
	}{
		{expr: "1 << 8", want: "0x100"},
		{expr: "(A + 2) * 3", want: "0x36"},
		{expr: "7 / 2", want: "0x3"},
		{expr: "7 % 4", want: "0x3"},
		{expr: "0xf0 | 0x0f", want: "0xff"},
		{expr: "0xff &^ 0x0f", want: "0xf0"},
		{expr: "1_000_000", want: "0xf4240"},
		{expr: "BIG + 1", want: "0x100000000000000000000000000000000"},
		{expr: "-A + 0x20", want: "0x10"},
		{expr: "B + 1", wantErr: true},
		{expr: "A - 0x11", wantErr: true},
		{expr: "1 / 0", wantErr: true},
		{expr: "1 << 5000", wantErr: true},
		{expr: "1.5 * 2", wantErr: true},
		{expr: "UNKNOWN + 1", wantErr: true},
		{expr: "f(1)", wantErr: true},
		{expr: "1 +", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			n, err := Eval(tc.expr, env)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, FormatHex(n))
		})
	}
}

func TestReferences(t *testing.T) {
	assert.Equal(t, []string{"B", "C"}, References("B * (C + B) - lower"))
	assert.Nil(t, References(`b"x"`))
}

func TestIsCanonicalHex(t *testing.T) {
	assert.True(t, IsCanonicalHex("0x0"))
	assert.True(t, IsCanonicalHex("0xff"))
	assert.False(t, IsCanonicalHex("0xFF"))
	assert.False(t, IsCanonicalHex("0x0f"))
	assert.False(t, IsCanonicalHex("15"))
	assert.False(t, IsCanonicalHex("0x"))
}
