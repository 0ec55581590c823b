package types

// TreeNode is one projection of an entity onto a traversal path. The same
// entity may appear in several branches as independent copies.
type TreeNode struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	Children []TreeNode `json:"children"`
	IsEvent  bool       `json:"is_event,omitempty"`
}

// Walk calls fn for every node of the subtree in depth-first pre-order,
// passing the ids of the node's strict ancestors. Returning false skips the
// node's children.
func (n TreeNode) Walk(fn func(node TreeNode, ancestors []string) bool) {
	n.walk(nil, fn)
}

func (n TreeNode) walk(ancestors []string, fn func(TreeNode, []string) bool) {
	if !fn(n, ancestors) {
		return
	}
	path := append(append([]string(nil), ancestors...), n.ID)
	for _, child := range n.Children {
		child.walk(path, fn)
	}
}

// Size returns the number of nodes in the subtree, the node included.
func (n TreeNode) Size() int {
	count := 0
	n.Walk(func(TreeNode, []string) bool {
		count++
		return true
	})
	return count
}
