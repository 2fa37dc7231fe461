package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func TestGridNeighbors(t *testing.T) {
	require := require.New(t)

	grid := NewGrid[int32](10)
	grid.Add(1, orb.Bound{Min: Coord{0, 0}, Max: Coord{5, 5}})
	grid.Add(2, orb.Bound{Min: Coord{100, 100}, Max: Coord{105, 105}})

	near := grid.Neighbors(orb.Bound{Min: Coord{4, 4}, Max: Coord{6, 6}}, 1)
	require.Len(near, 1)
	require.Equal(int32(1), near[0])

	// radius bridges the gap
	far := grid.Neighbors(orb.Bound{Min: Coord{50, 50}, Max: Coord{60, 60}}, 50)
	require.Len(far, 2)
}

func TestGridRemove(t *testing.T) {
	require := require.New(t)

	grid := NewGrid[int32](10)
	grid.Add(1, orb.Bound{Min: Coord{0, 0}, Max: Coord{25, 5}})
	require.True(grid.Contains(1))

	grid.Remove(1)
	require.False(grid.Contains(1))
	require.Empty(grid.Neighbors(orb.Bound{Min: Coord{0, 0}, Max: Coord{30, 30}}, 5))
}

func TestGridReAdd(t *testing.T) {
	require := require.New(t)

	grid := NewGrid[int32](10)
	grid.Add(1, orb.Bound{Min: Coord{0, 0}, Max: Coord{5, 5}})
	// moving the value re-registers it under its new cells only
	grid.Add(1, orb.Bound{Min: Coord{100, 100}, Max: Coord{105, 105}})

	require.Empty(grid.Neighbors(orb.Bound{Min: Coord{0, 0}, Max: Coord{10, 10}}, 1))
	require.Len(grid.Neighbors(orb.Bound{Min: Coord{99, 99}, Max: Coord{101, 101}}, 1), 1)
}
