package model

// FlatNode is a node with a path breadcrumb instead of children.
type FlatNode struct {
	Seq       int    `yaml:"i"                json:"i"`
	Role      string `yaml:"r"                json:"r"`
	Class     string `yaml:"class"            json:"class"`
	ViewID    string `yaml:"id,omitempty"     json:"id,omitempty"`
	Text      string `yaml:"t,omitempty"      json:"t,omitempty"`
	Desc      string `yaml:"d,omitempty"      json:"d,omitempty"`
	Clickable bool   `yaml:"click,omitempty"  json:"click,omitempty"`
	Bounds    [4]int `yaml:"b"                json:"b"`
	Path      string `yaml:"p,omitempty"      json:"p,omitempty"`
}

// Flatten converts a tree into a preorder list. Each entry gets a
// sequential number and a path of role codes joined with " > ".
func Flatten(root *Node) []FlatNode {
	return FlattenFiltered(root, Filter{})
}

// FlattenFiltered is Flatten keeping only nodes that match f. Sequence
// numbers still count every node, so they are stable across filters.
func FlattenFiltered(root *Node, f Filter) []FlatNode {
	if root == nil {
		return nil
	}
	var result []FlatNode
	seq := 0
	flattenRecursive(root, "", f, &seq, &result)
	return result
}

func flattenRecursive(n *Node, parentPath string, f Filter, seq *int, result *[]FlatNode) {
	*seq++
	role := MapRole(n.Class)
	currentPath := role
	if parentPath != "" {
		currentPath = parentPath + " > " + role
	}

	var rect [4]int
	if b, err := ParseBounds(n.Bounds); err == nil {
		rect = b.Rect()
	}

	if f.Match(n) {
		*result = append(*result, FlatNode{
			Seq:       *seq,
			Role:      role,
			Class:     n.Class,
			ViewID:    n.ResourceID,
			Text:      n.Text,
			Desc:      n.ContentDesc,
			Clickable: n.IsClickable,
			Bounds:    rect,
			Path:      currentPath,
		})
	}

	for _, c := range n.Nodes {
		if c != nil {
			flattenRecursive(c, currentPath, f, seq, result)
		}
	}
}
