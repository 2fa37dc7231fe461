package geo

import (
	"math"

	"github.com/paulmach/orb"
	. "github.com/ttpr0/go-transitmap/util"
)

//*******************************************
// uniform grid
//*******************************************

// Fixed-cell uniform grid over bounding boxes. Values occupy every cell
// their box overlaps.
type Grid[T comparable] struct {
	cellsize float64
	cells    Dict[[2]int, List[T]]
	bounds   Dict[T, orb.Bound]
}

func NewGrid[T comparable](cellsize float64) Grid[T] {
	return Grid[T]{
		cellsize: cellsize,
		cells:    NewDict[[2]int, List[T]](100),
		bounds:   NewDict[T, orb.Bound](100),
	}
}

func (self *Grid[T]) _CellRange(bound orb.Bound) (int, int, int, int) {
	min_x := int(math.Floor(bound.Min[0] / self.cellsize))
	min_y := int(math.Floor(bound.Min[1] / self.cellsize))
	max_x := int(math.Floor(bound.Max[0] / self.cellsize))
	max_y := int(math.Floor(bound.Max[1] / self.cellsize))
	return min_x, min_y, max_x, max_y
}

func (self *Grid[T]) Add(value T, bound orb.Bound) {
	if self.bounds.ContainsKey(value) {
		self.Remove(value)
	}
	self.bounds[value] = bound
	min_x, min_y, max_x, max_y := self._CellRange(bound)
	for x := min_x; x <= max_x; x++ {
		for y := min_y; y <= max_y; y++ {
			cell := self.cells[[2]int{x, y}]
			cell.Add(value)
			self.cells[[2]int{x, y}] = cell
		}
	}
}

func (self *Grid[T]) Remove(value T) {
	bound, ok := self.bounds[value]
	if !ok {
		return
	}
	self.bounds.Delete(value)
	min_x, min_y, max_x, max_y := self._CellRange(bound)
	for x := min_x; x <= max_x; x++ {
		for y := min_y; y <= max_y; y++ {
			cell := self.cells[[2]int{x, y}]
			for i := cell.Length() - 1; i >= 0; i-- {
				if cell[i] == value {
					cell.Remove(i)
				}
			}
			if cell.Length() == 0 {
				self.cells.Delete([2]int{x, y})
			} else {
				self.cells[[2]int{x, y}] = cell
			}
		}
	}
}

func (self *Grid[T]) Contains(value T) bool {
	return self.bounds.ContainsKey(value)
}

// Values whose boxes come within radius of the given box. The result is
// a candidate set, exact distances are up to the caller.
func (self *Grid[T]) Neighbors(bound orb.Bound, radius float64) List[T] {
	query := BoundBuffer(bound, radius)
	min_x, min_y, max_x, max_y := self._CellRange(query)
	seen := NewDict[T, bool](16)
	ret := NewList[T](16)
	for x := min_x; x <= max_x; x++ {
		for y := min_y; y <= max_y; y++ {
			cell, ok := self.cells[[2]int{x, y}]
			if !ok {
				continue
			}
			for _, value := range cell {
				if seen.ContainsKey(value) {
					continue
				}
				seen[value] = true
				if BoundsOverlap(query, self.bounds[value]) {
					ret.Add(value)
				}
			}
		}
	}
	return ret
}

func (self *Grid[T]) Clear() {
	self.cells = NewDict[[2]int, List[T]](100)
	self.bounds = NewDict[T, orb.Bound](100)
}
