package domain

// NavNode is one node of the hierarchical application menu.
// Group nodes have no Path and exist only to hold Children.
type NavNode struct {
	Title    string
	Path     string
	Icon     string
	Children []NavNode
}

// NavTree is the static menu definition. Indexes are memoized per tree pointer.
type NavTree struct {
	Roots []NavNode
}

// NavEntry is a flattened, navigable menu leaf. Immutable after construction.
type NavEntry struct {
	ID          string
	Title       string
	Path        string
	Icon        string
	ParentTitle string
}

// Filter returns a copy of the tree keeping only nodes for which keep(path) holds.
// Group nodes (no path) are kept while at least one descendant survives.
func (t *NavTree) Filter(keep func(path string) bool) *NavTree {
	if t == nil {
		return &NavTree{}
	}
	return &NavTree{Roots: filterNodes(t.Roots, keep)}
}

func filterNodes(nodes []NavNode, keep func(string) bool) []NavNode {
	var out []NavNode
	for _, n := range nodes {
		children := filterNodes(n.Children, keep)
		if n.Path != "" && !keep(n.Path) {
			continue
		}
		if n.Path == "" && len(children) == 0 {
			continue
		}
		out = append(out, NavNode{
			Title:    n.Title,
			Path:     n.Path,
			Icon:     n.Icon,
			Children: children,
		})
	}
	return out
}
