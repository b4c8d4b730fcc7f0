package dag

import "sort"

type NodeID uint32

// Node is one named vertex and the names it references.
type Node struct {
	Name string
	Refs []string
}

type Index struct {
	NameToID map[string]NodeID
	IDToName []string
}

// собрать уникальные имена, sort.Strings, раздать ID по порядку
func BuildIndex(nodes []Node) Index {
	uniq := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		if node.Name != "" {
			uniq[node.Name] = struct{}{}
		}
		for _, ref := range node.Refs {
			if ref == "" {
				continue
			}
			uniq[ref] = struct{}{}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]NodeID, len(names))
	for i, name := range names {
		nameToID[name] = NodeID(i)
	}

	return Index{
		NameToID: nameToID,
		IDToName: names,
	}
}
