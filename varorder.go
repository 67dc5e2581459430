package dpll

import "fmt"

// VarOrder is the branching order: a binary heap of unassigned
// variables yielding the lowest-numbered one first. The policy only
// affects performance, not correctness, but it must be deterministic
// so that repeated solves produce the same output.
type VarOrder struct {
	data    []Var
	indices []int
}

// NewVarOrder returns an order holding every variable in 0..numVars-1.
func NewVarOrder(numVars int) *VarOrder {
	h := &VarOrder{
		data:    make([]Var, 0, numVars),
		indices: make([]int, numVars),
	}
	for v := 0; v < numVars; v++ {
		h.data = append(h.data, Var(v))
		h.indices[v] = v
	}
	return h
}

// Empty returns true when no variable remains in the order.
func (h *VarOrder) Empty() bool {
	return len(h.data) == 0
}

// InHeap returns true when v is currently in the order.
func (h *VarOrder) InHeap(v Var) bool {
	return h.indices[v] >= 0
}

// RemoveMin pops the lowest-numbered variable.
func (h *VarOrder) RemoveMin() Var {
	v := h.data[0]
	last := len(h.data) - 1
	h.data[0] = h.data[last]
	h.indices[h.data[0]] = 0
	h.indices[v] = -1
	h.data = h.data[:last]
	if len(h.data) > 1 {
		h.percolateDown(0)
	}
	return v
}

// PushBack reinserts a variable, typically after backtracking
// unassigned it. It panics when v is already present.
func (h *VarOrder) PushBack(v Var) {
	if h.InHeap(v) {
		panic(fmt.Sprintf("variable %d is already in the order", v))
	}
	h.data = append(h.data, v)
	h.indices[v] = len(h.data) - 1
	h.percolateUp(len(h.data) - 1)
}

func (h *VarOrder) percolateUp(i int) {
	v := h.data[i]
	for i != 0 {
		p := parentIndex(i)
		if v >= h.data[p] {
			break
		}
		h.data[i] = h.data[p]
		h.indices[h.data[i]] = i
		i = p
	}
	h.data[i] = v
	h.indices[v] = i
}

func (h *VarOrder) percolateDown(i int) {
	v := h.data[i]
	for leftIndex(i) < len(h.data) {
		child := leftIndex(i)
		if r := rightIndex(i); r < len(h.data) && h.data[r] < h.data[child] {
			child = r
		}
		if h.data[child] >= v {
			break
		}
		h.data[i] = h.data[child]
		h.indices[h.data[i]] = i
		i = child
	}
	h.data[i] = v
	h.indices[v] = i
}

func leftIndex(i int) int   { return 2*i + 1 }
func rightIndex(i int) int  { return 2*i + 2 }
func parentIndex(i int) int { return (i - 1) >> 1 }
