package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPruneImports(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		cleanup []string
		want    string
		pruned  []string
	}{
		{
			name:    "single name statement",
			src:     "module a {\n    use a::m::FOO;\n    use std::v;\n}\n",
			cleanup: []string{"FOO"},
			want:    "module a {\n    use std::v;\n}\n",
			pruned:  []string{"FOO"},
		},
		{
			name:    "middle of list",
			src:     "    use a::m::{BAR, FOO, X};\n",
			cleanup: []string{"FOO"},
			want:    "    use a::m::{BAR, X};\n",
			pruned:  []string{"FOO"},
		},
		{
			name:    "first of list",
			src:     "    use a::m::{FOO, BAR};\n",
			cleanup: []string{"FOO"},
			want:    "    use a::m::{BAR};\n",
			pruned:  []string{"FOO"},
		},
		{
			name:    "last of list",
			src:     "    use a::m::{BAR, FOO};\n",
			cleanup: []string{"FOO"},
			want:    "    use a::m::{BAR};\n",
			pruned:  []string{"FOO"},
		},
		{
			name:    "multi-line list with trailing comma",
			src:     "    use a::m::{\n        BAR,\n        FOO,\n    };\n",
			cleanup: []string{"FOO"},
			want:    "    use a::m::{\n        BAR,\n    };\n",
			pruned:  []string{"FOO"},
		},
		{
			name:    "path item in list",
			src:     "    use a::{m::FOO, n::Y};\n",
			cleanup: []string{"FOO"},
			want:    "    use a::{n::Y};\n",
			pruned:  []string{"FOO"},
		},
		{
			name:    "emptied list drops the line",
			src:     "    use a::m::{FOO};\n    fun f() {}\n",
			cleanup: []string{"FOO"},
			want:    "    fun f() {}\n",
			pruned:  []string{"FOO"},
		},
		{
			name:    "emptied nested group",
			src:     "    use a::{m::{FOO}, n::Y};\n",
			cleanup: []string{"FOO"},
			want:    "    use a::{n::Y};\n",
			pruned:  []string{"FOO"},
		},
		{
			name:    "several names",
			src:     "    use a::m::{BAR, FOO, X};\n",
			cleanup: []string{"FOO", "BAR"},
			want:    "    use a::m::{X};\n",
			pruned:  []string{"BAR", "FOO"},
		},
		{
			name:    "statement sharing a line",
			src:     "    use a::m::FOO; use b::c;\n",
			cleanup: []string{"FOO"},
			want:    "    use b::c;\n",
			pruned:  []string{"FOO"},
		},
		{
			name:    "longer name is kept",
			src:     "    use a::m::{FOO_BAR, FOO};\n",
			cleanup: []string{"FOO"},
			want:    "    use a::m::{FOO_BAR};\n",
			pruned:  []string{"FOO"},
		},
		{
			name:    "alias is left alone",
			src:     "    use a::m::X as FOO;\n",
			cleanup: []string{"FOO"},
			want:    "    use a::m::X as FOO;\n",
		},
		{
			name:    "commented import is left alone",
			src:     "    // use a::m::FOO;\n",
			cleanup: []string{"FOO"},
			want:    "    // use a::m::FOO;\n",
		},
		{
			name:    "not imported",
			src:     "    use a::m::BAR;\n",
			cleanup: []string{"FOO"},
			want:    "    use a::m::BAR;\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, pruned := pruneImports(tt.src, set(tt.cleanup...))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.pruned, pruned)
		})
	}
}
