package consttable

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"
)

type rawEntry struct {
	Type    string `toml:"type"`
	Value   any    `toml:"value"`
	Comment string `toml:"comment"`
}

// Load reads and validates a constant table document:
//
//	[MAX_SUPPLY]
//	type = "u64"
//	value = "1_000_000 * DECIMALS"
//	comment = "Total supply cap"
func Load(path string) (*Table, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read constant table: %w", path, err)
	}
	return Decode(data, path)
}

// Decode parses a constant table document held in memory. origin is only used
// in error messages.
func Decode(data []byte, origin string) (*Table, error) {
	var raw map[string]rawEntry
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", origin, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: %w: unknown keys %s", origin, ErrInvalidEntry, strings.Join(keys, ", "))
	}

	t := &Table{entries: make(map[string]*Definition, len(raw)), origin: origin}
	for name, entry := range raw {
		if !IsIdent(name) {
			return nil, fmt.Errorf("%s: %w: %q is not an UPPER_SNAKE_CASE name", origin, ErrInvalidEntry, name)
		}
		if !meta.IsDefined(name, "type") || strings.TrimSpace(entry.Type) == "" {
			return nil, fmt.Errorf("%s: %w: missing [%s].type", origin, ErrInvalidEntry, name)
		}
		if !meta.IsDefined(name, "value") {
			return nil, fmt.Errorf("%s: %w: missing [%s].value", origin, ErrInvalidEntry, name)
		}
		value, err := valueString(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: [%s].value %v", origin, ErrInvalidEntry, name, err)
		}
		t.entries[name] = &Definition{
			Name:    name,
			Type:    strings.TrimSpace(entry.Type),
			Value:   value,
			Comment: norm.NFC.String(strings.TrimSpace(entry.Comment)),
		}
	}
	return t, nil
}

// valueString accepts both `value = "A + 1"` and bare integers `value = 10`.
func valueString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return "", fmt.Errorf("is empty")
		}
		return s, nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	default:
		return "", fmt.Errorf("must be a string or an integer, got %T", v)
	}
}
