package rewrite

import (
	"orn/internal/consttable"
)

func testTable() *consttable.Table {
	return consttable.NewTable(
		consttable.Definition{Name: "FOO", Type: "u64", Value: "0x10", Comment: "Foo value"},
		consttable.Definition{Name: "BAR", Type: "u8", Value: "0x1"},
		consttable.Definition{Name: "FOO_BAR", Type: "u64", Value: "0x2"},
		consttable.Definition{Name: "Y", Type: "u64", Value: "0x3"},
	)
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
