package consttable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTable = `
[DECIMALS]
type = "u8"
value = "8"

[MAX_SUPPLY]
type = "u64"
value = "1_000 * (1 << DECIMALS)"
comment = "Total supply cap"

[FEE_BPS]
type = "u64"
value = 30
`

func TestDecode(t *testing.T) {
	table, err := Decode([]byte(sampleTable), "const_values.toml")
	require.NoError(t, err)

	assert.Equal(t, []string{"DECIMALS", "FEE_BPS", "MAX_SUPPLY"}, table.Names())
	d, ok := table.Get("MAX_SUPPLY")
	require.True(t, ok)
	assert.Equal(t, "u64", d.Type)
	assert.Equal(t, "1_000 * (1 << DECIMALS)", d.Value)
	assert.Equal(t, "Total supply cap", d.Comment)

	fee, _ := table.Get("FEE_BPS")
	assert.Equal(t, "30", fee.Value)
}

func TestDecodeNormalizesComments(t *testing.T) {
	// "e" + combining acute accent must render as the precomposed rune.
	doc := "[A]\ntype = \"u8\"\nvalue = \"1\"\ncomment = \"cafe\u0301\"\n"
	table, err := Decode([]byte(doc), "t.toml")
	require.NoError(t, err)
	d, _ := table.Get("A")
	assert.Equal(t, "caf\u00e9", d.Comment)
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"missing type":  "[A]\nvalue = \"1\"\n",
		"missing value": "[A]\ntype = \"u8\"\n",
		"bad name":      "[lower]\ntype = \"u8\"\nvalue = \"1\"\n",
		"unknown key":   "[A]\ntype = \"u8\"\nvalue = \"1\"\nvisibility = \"public\"\n",
		"bad value":     "[A]\ntype = \"u8\"\nvalue = 1.5\n",
		"empty value":   "[A]\ntype = \"u8\"\nvalue = \" \"\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc), "t.toml")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidEntry)
		})
	}

	_, err := Decode([]byte("[A\n"), "t.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse TOML")
}

func TestLoadAndResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "const_values.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTable), 0o600))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, table.Origin())

	res := Resolve(table, nil)
	assert.True(t, res.Converged)
	d, _ := table.Get("MAX_SUPPLY")
	assert.Equal(t, "0x3e800", d.Value)
}

func TestCloneAndDigest(t *testing.T) {
	table, err := Decode([]byte(sampleTable), "t.toml")
	require.NoError(t, err)

	clone := table.Clone()
	assert.Equal(t, table.Digest(), clone.Digest())

	Resolve(clone, nil)
	assert.NotEqual(t, table.Digest(), clone.Digest())
	d, _ := table.Get("DECIMALS")
	assert.Equal(t, "8", d.Value, "resolving the clone must not touch the original")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
