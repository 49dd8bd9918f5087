package changeset

import "reflect"

// Equal reports structural equality of two changesets, treating nil and
// empty collections alike so canonical and pruned forms compare equal.
func (c *ModularChangeset) Equal(other *ModularChangeset) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.MaxId != other.MaxId || c.ConstraintViolated != other.ConstraintViolated {
		return false
	}
	if !fieldChangeMapsEqual(c.FieldChanges, other.FieldChanges) {
		return false
	}
	if !EqualAtomMaps(c.Builds, other.Builds, TreesEqual) {
		return false
	}
	if !EqualAtomMaps(c.Destroys, other.Destroys, func(a, b int) bool { return a == b }) {
		return false
	}
	if !EqualAtomMaps(c.Refreshers, other.Refreshers, TreesEqual) {
		return false
	}
	if len(c.Revisions) != len(other.Revisions) {
		return false
	}
	for i := range c.Revisions {
		if c.Revisions[i] != other.Revisions[i] {
			return false
		}
	}
	if len(c.Constraints) != len(other.Constraints) {
		return false
	}
	for id := range c.Constraints {
		if _, ok := other.Constraints[id]; !ok {
			return false
		}
	}
	return true
}

func TreesEqual(a, b []TreeNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func fieldChangeMapsEqual(a, b FieldChangeMap) bool {
	if len(a) != len(b) {
		return false
	}
	for key, fa := range a {
		var fb, ok = b[key]
		if !ok || fa.Kind != fb.Kind {
			return false
		}
		if !reflect.DeepEqual(fa.Change, fb.Change) {
			return false
		}
	}
	return true
}
