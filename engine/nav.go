package engine

import "container/heap"

// navNode is a node in the A* search over a perceived local map.
type navNode struct {
	cell  cellID
	f     float64
	index int
}

type cellID struct {
	row, col int
}

// nodeHeap implements heap.Interface for the A* open set.
type nodeHeap []*navNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*navNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[0 : n-1]
	return node
}

// findPath computes a 4-connected A* path from start to goal over the
// cells the passable predicate admits. The goal cell itself does not
// need to be passable (it may hold the sought occupant). Returns the
// cell sequence excluding start, or nil when no path exists.
func findPath(start, goal cellID, passable func(cellID) bool) []cellID {
	if start == goal {
		return nil
	}

	open := &nodeHeap{}
	cameFrom := make(map[cellID]cellID)
	gScore := map[cellID]float64{start: 0}

	heap.Push(open, &navNode{cell: start, f: manhattan(start, goal)})

	for open.Len() > 0 {
		current := heap.Pop(open).(*navNode)
		if current.cell == goal {
			return reconstructPath(cameFrom, start, goal)
		}

		neighbors := [4]cellID{
			{current.cell.row - 1, current.cell.col},
			{current.cell.row + 1, current.cell.col},
			{current.cell.row, current.cell.col - 1},
			{current.cell.row, current.cell.col + 1},
		}
		for _, n := range neighbors {
			if n != goal && !passable(n) {
				continue
			}
			tentative := gScore[current.cell] + 1
			if existing, ok := gScore[n]; ok && tentative >= existing {
				continue
			}
			cameFrom[n] = current.cell
			gScore[n] = tentative
			heap.Push(open, &navNode{cell: n, f: tentative + manhattan(n, goal)})
		}
	}
	return nil
}

func manhattan(a, b cellID) float64 {
	dr := a.row - b.row
	if dr < 0 {
		dr = -dr
	}
	dc := a.col - b.col
	if dc < 0 {
		dc = -dc
	}
	return float64(dr + dc)
}

func reconstructPath(cameFrom map[cellID]cellID, start, goal cellID) []cellID {
	var rev []cellID
	for cur := goal; cur != start; {
		rev = append(rev, cur)
		prev, ok := cameFrom[cur]
		if !ok {
			return nil
		}
		cur = prev
	}
	path := make([]cellID, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}
