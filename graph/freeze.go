package graph

import (
	. "github.com/ttpr0/go-transitmap/util"
)

//*******************************************
// freeze registry
//*******************************************

// Records which node every node of a past snapshot has collapsed into.
// Merges append to a parent-pointer forest, Track resolves chains with
// path compression. Deleted nodes resolve to nothing.
type FreezeRegistry struct {
	next_snapshot int
	snapshots     Dict[int, List[int32]]
	parents       Dict[int32, int32]
	deleted       Dict[int32, bool]
}

func NewFreezeRegistry() *FreezeRegistry {
	return &FreezeRegistry{
		snapshots: NewDict[int, List[int32]](4),
		parents:   NewDict[int32, int32](100),
		deleted:   NewDict[int32, bool](100),
	}
}

// Captures the given node set under a fresh monotone snapshot id.
func (self *FreezeRegistry) Freeze(nodes List[int32]) int {
	id := self.next_snapshot
	self.next_snapshot += 1
	captured := make([]int32, nodes.Length())
	copy(captured, nodes)
	self.snapshots[id] = captured
	return id
}

// Records that from was contracted into to.
func (self *FreezeRegistry) RecordMerge(from int32, to int32) {
	self.parents[from] = to
}

// Records that the node was destroyed without a survivor.
func (self *FreezeRegistry) RecordDelete(node int32) {
	self.deleted[node] = true
}

// Resolves a node to its current survivor, absent if it was deleted.
func (self *FreezeRegistry) Resolve(node int32) Optional[int32] {
	seen := NewList[int32](4)
	current := node
	for {
		if self.deleted[current] {
			return None[int32]()
		}
		parent, ok := self.parents[current]
		if !ok {
			break
		}
		seen.Add(current)
		current = parent
	}
	// path compression
	for _, n := range seen {
		self.parents[n] = current
	}
	return Some(current)
}

// Maps every node of the snapshot to its current survivor. Nodes deleted
// since the snapshot are absent from the result.
func (self *FreezeRegistry) Track(snapshot int) Dict[int32, int32] {
	nodes, ok := self.snapshots[snapshot]
	if !ok {
		return NewDict[int32, int32](0)
	}
	ret := NewDict[int32, int32](nodes.Length())
	for _, node := range nodes {
		resolved := self.Resolve(node)
		if resolved.HasValue() {
			ret[node] = resolved.Value
		}
	}
	return ret
}
