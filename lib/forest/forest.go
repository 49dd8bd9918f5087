package forest

import (
	"github.com/ether/sharedtree-go/lib/changeset"
	"github.com/ether/sharedtree-go/lib/exception"
	"github.com/ether/sharedtree-go/lib/utils"
)

// Forest is the reference in-memory tree storage: root fields plus a store
// of detached subtrees addressed by detached-node id. It implements the two
// contracts the core needs from storage, applying deltas and handing out
// copies of detached nodes. It is a test-grade embedder aid, not a
// persistence layer.
type Forest struct {
	roots    map[changeset.FieldKey][]changeset.TreeNode
	detached map[changeset.DetachedNodeId][]changeset.TreeNode
}

func New() *Forest {
	return &Forest{
		roots:    make(map[changeset.FieldKey][]changeset.TreeNode),
		detached: make(map[changeset.DetachedNodeId][]changeset.TreeNode),
	}
}

func (f *Forest) Clone() *Forest {
	var out = New()
	for key, trees := range f.roots {
		out.roots[key] = changeset.CloneTrees(trees)
	}
	for id, trees := range f.detached {
		out.detached[id] = changeset.CloneTrees(trees)
	}
	return out
}

// GetDetached hands out a copy of a detached subtree, the lookup callback
// UpdateRefreshers needs.
func (f *Forest) GetDetached(id changeset.DetachedNodeId) ([]changeset.TreeNode, bool) {
	var trees, ok = f.detached[id]
	if !ok {
		return nil, false
	}
	return changeset.CloneTrees(trees), true
}

func (f *Forest) AddDetached(id changeset.DetachedNodeId, trees []changeset.TreeNode) {
	f.detached[id] = changeset.CloneTrees(trees)
}

func (f *Forest) Roots(key changeset.FieldKey) []changeset.TreeNode {
	return f.roots[key]
}

func (f *Forest) SetRoots(key changeset.FieldKey, trees []changeset.TreeNode) {
	f.roots[key] = changeset.CloneTrees(trees)
}

// ApplyDelta applies the instruction set derived from one changeset.
func (f *Forest) ApplyDelta(d *changeset.Delta) error {
	if d == nil {
		return nil
	}
	for _, build := range d.Builds {
		f.detached[build.Id] = changeset.CloneTrees(build.Trees)
	}
	for _, refresher := range d.Refreshers {
		if _, ok := f.detached[refresher.Id]; !ok {
			f.detached[refresher.Id] = changeset.CloneTrees(refresher.Trees)
		}
	}
	for _, key := range sortedFieldKeys(d.Fields) {
		if err := f.applyFieldDelta(f.roots, key, d.Fields[key]); err != nil {
			return err
		}
	}
	for _, destroy := range d.Destroys {
		delete(f.detached, destroy.Id)
	}
	return nil
}

func (f *Forest) applyFieldDelta(fields map[changeset.FieldKey][]changeset.TreeNode, key changeset.FieldKey, fd *changeset.FieldDelta) error {
	var nodes = fields[key]
	var index = 0
	for _, mark := range fd.Local {
		if mark.Detach != nil {
			if index+mark.Count > len(nodes) {
				return exception.NewDataIntegrityError(
					"detach mark extends past the end of field '"+string(key)+"'", nil)
			}
			f.detached[*mark.Detach] = changeset.CloneTrees(nodes[index : index+mark.Count])
			nodes = append(nodes[:index:index], nodes[index+mark.Count:]...)
		}
		if mark.Attach != nil {
			var trees, ok = f.detached[*mark.Attach]
			if !ok {
				return exception.NewDetachedNodeNotFoundError(mark.Attach.String())
			}
			delete(f.detached, *mark.Attach)
			nodes = append(nodes[:index:index], append(changeset.CloneTrees(trees), nodes[index:]...)...)
		}
		if mark.Attach == nil && mark.Detach == nil {
			// in-place treatment of Count nodes: value overwrite and/or
			// nested field modifications
			var end = index + mark.Count
			if end > len(nodes) {
				// absent node: materialize so value kinds can target an
				// empty field
				for len(nodes) < end {
					nodes = append(nodes, changeset.TreeNode{})
				}
			}
			for i := index; i < end; i++ {
				if mark.Value != nil {
					nodes[i].Value = mark.Value
				}
				if mark.Fields != nil {
					if nodes[i].Fields == nil {
						nodes[i].Fields = make(map[changeset.FieldKey][]changeset.TreeNode)
					}
					for _, childKey := range sortedFieldKeys(mark.Fields) {
						if err := f.applyFieldDelta(nodes[i].Fields, childKey, mark.Fields[childKey]); err != nil {
							return err
						}
					}
				}
			}
			index = end
			fields[key] = nodes
			continue
		}
		index += countAfterAttach(mark)
		fields[key] = nodes
	}
	fields[key] = nodes
	return nil
}

func countAfterAttach(mark changeset.DeltaMark) int {
	if mark.Attach != nil {
		return mark.Count
	}
	return 0
}

func sortedFieldKeys(m map[changeset.FieldKey]*changeset.FieldDelta) []changeset.FieldKey {
	return utils.SortedKeys(m)
}
