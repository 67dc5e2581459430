package dpll

import "fmt"

// Watcher records that a clause watches a literal. The blocker is the
// other watched literal at registration time; when it is already true
// the clause can be skipped without loading it.
type Watcher struct {
	ref     ClauseRef
	blocker Lit
}

// Watches maps each literal to the clauses currently watching it. A
// clause sits in exactly two lists, except transiently while a watch
// moves. The propagation scan compacts a list in place while iterating
// over it, so iteration order is not stable across watch moves.
type Watches struct {
	occs [][]Watcher
}

// NewWatches returns a watch index sized for numVars variables.
func NewWatches(numVars int) *Watches {
	return &Watches{occs: make([][]Watcher, 2*numVars)}
}

// Lookup returns a pointer to the list of watchers of l so the caller
// can compact it in place.
func (w *Watches) Lookup(l Lit) *[]Watcher {
	return &w.occs[l]
}

// Append registers a watcher of l.
func (w *Watches) Append(l Lit, watcher Watcher) {
	w.occs[l] = append(w.occs[l], watcher)
}

// Remove unregisters the watcher of l referencing ref. It panics when
// no such watcher exists.
func (w *Watches) Remove(l Lit, ref ClauseRef) {
	ws := w.occs[l]
	for i := range ws {
		if ws[i].ref == ref {
			ws[i] = ws[len(ws)-1]
			w.occs[l] = ws[:len(ws)-1]
			return
		}
	}
	panic(fmt.Sprintf("clause %d does not watch %v", ref, l))
}
