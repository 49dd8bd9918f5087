package changeset

import "reflect"

// TreeNode is the full subtree content carried by builds and refreshers.
type TreeNode struct {
	Type   string
	Value  any
	Fields map[FieldKey][]TreeNode
}

func (n TreeNode) Equal(other TreeNode) bool {
	if n.Type != other.Type {
		return false
	}
	if !reflect.DeepEqual(n.Value, other.Value) {
		return false
	}
	if len(n.Fields) != len(other.Fields) {
		return false
	}
	for key, children := range n.Fields {
		otherChildren, ok := other.Fields[key]
		if !ok || len(children) != len(otherChildren) {
			return false
		}
		for i := range children {
			if !children[i].Equal(otherChildren[i]) {
				return false
			}
		}
	}
	return true
}

func CloneTrees(trees []TreeNode) []TreeNode {
	var out = make([]TreeNode, len(trees))
	for i, t := range trees {
		out[i] = cloneTree(t)
	}
	return out
}

func cloneTree(n TreeNode) TreeNode {
	var fields map[FieldKey][]TreeNode
	if n.Fields != nil {
		fields = make(map[FieldKey][]TreeNode, len(n.Fields))
		for key, children := range n.Fields {
			fields[key] = CloneTrees(children)
		}
	}
	return TreeNode{
		Type:   n.Type,
		Value:  n.Value,
		Fields: fields,
	}
}
