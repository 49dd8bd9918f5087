package rev

// RevisionMetadata answers ordering questions about the revisions a rebase
// is happening over: which position a tag holds in the applied order, and
// which tag holds a given position.
type RevisionMetadata struct {
	infos []RevisionInfo
	index map[RevisionTag]int
}

func NewRevisionMetadata(infos []RevisionInfo) *RevisionMetadata {
	var index = make(map[RevisionTag]int, len(infos))
	for i, info := range infos {
		index[info.Revision] = i
	}
	return &RevisionMetadata{
		infos: infos,
		index: index,
	}
}

func (m *RevisionMetadata) Len() int {
	return len(m.infos)
}

func (m *RevisionMetadata) IndexOf(tag RevisionTag) (int, bool) {
	var i, ok = m.index[tag]
	return i, ok
}

func (m *RevisionMetadata) TagAt(i int) (RevisionTag, bool) {
	if i < 0 || i >= len(m.infos) {
		return None, false
	}
	return m.infos[i].Revision, true
}

func (m *RevisionMetadata) IsRollback(tag RevisionTag) bool {
	var i, ok = m.index[tag]
	if !ok {
		return false
	}
	return m.infos[i].Rollback
}
