package optimizer

import (
	"slices"
	"sort"

	"github.com/kilianp07/crossroad/core/model"
)

// perimeter gives the counter-clockwise position of the entry and exit point
// of each approach around the junction box, for right-hand traffic.
var perimeter = map[byte][2]int{
	// {exit, entry}
	'E': {0, 1},
	'N': {2, 3},
	'W': {4, 5},
	'S': {6, 7},
}

func endpoints(r model.Route) (int, int, bool) {
	o, ok1 := perimeter[r.Origin()]
	d, ok2 := perimeter[r.Destination()]
	return o[1], d[0], ok1 && ok2
}

// Conflicts reports whether two routes cannot use the junction at the same
// time: the same route (followers), routes merging into the same exit, and
// routes whose paths cross. Routes diverging from one approach use distinct
// lanes and never conflict.
func Conflicts(a, b model.Route) bool {
	if a == b {
		return true
	}
	if a.Origin() == b.Origin() {
		return false
	}
	if a.Destination() == b.Destination() {
		return true
	}
	a1, a2, ok := endpoints(a)
	if !ok {
		return false
	}
	b1, b2, ok := endpoints(b)
	if !ok {
		return false
	}
	return between(b1, a1, a2) != between(b2, a1, a2)
}

// between reports whether x lies strictly inside the arc (lo, hi).
func between(x, lo, hi int) bool {
	if lo > hi {
		lo, hi = hi, lo
	}
	return x > lo && x < hi
}

// span is an inclusive range of steps at which a route may not be released.
type span struct{ lo, hi int }

// placement is a release of the route with index id at step.
type placement struct {
	id   int
	step int
}

// ledger holds committed release steps so that later batches respect them.
// For every known route it keeps the merged, sorted spans blocked by
// conflicting reservations, so the earliest free step is a binary search.
type ledger struct {
	conflictHeadway int
	followHeadway   int

	ids      map[model.Route]int
	routes   []model.Route
	conflict [][]bool
	blocked  [][]span
	// live holds reservations that may still block a future release.
	live []placement
}

func newLedger(conflictHeadway, followHeadway int) *ledger {
	l := &ledger{conflictHeadway: conflictHeadway, followHeadway: followHeadway, ids: map[model.Route]int{}}
	for _, o := range "ENWS" {
		for _, d := range "ENWS" {
			if o != d {
				l.id(model.Route("route_" + string(o) + string(d)))
			}
		}
	}
	return l
}

// id returns the index of r, registering it on first use.
func (l *ledger) id(r model.Route) int {
	if i, ok := l.ids[r]; ok {
		return i
	}
	i := len(l.routes)
	l.ids[r] = i
	l.routes = append(l.routes, r)
	row := make([]bool, i+1)
	for j, other := range l.routes {
		row[j] = Conflicts(r, other)
		if j < i {
			l.conflict[j] = append(l.conflict[j], row[j])
		}
	}
	l.conflict = append(l.conflict, row)
	var spans []span
	for _, p := range l.live {
		if row[p.id] {
			spans = insertSpan(spans, l.window(i, p))
		}
	}
	l.blocked = append(l.blocked, spans)
	return i
}

func (l *ledger) headway(a, b int) int {
	h := l.conflictHeadway
	if a == b {
		h = l.followHeadway
	}
	return h
}

// window is the span of steps that p blocks for route id.
func (l *ledger) window(id int, p placement) span {
	h := l.headway(id, p.id)
	return span{lo: p.step - h + 1, hi: p.step + h - 1}
}

// insertSpan merges sp into the sorted, disjoint list.
func insertSpan(list []span, sp span) []span {
	i := sort.Search(len(list), func(k int) bool { return list[k].hi >= sp.lo-1 })
	j := i
	for j < len(list) && list[j].lo <= sp.hi+1 {
		sp.lo = min(sp.lo, list[j].lo)
		sp.hi = max(sp.hi, list[j].hi)
		j++
	}
	return slices.Replace(list, i, j, sp)
}

// after returns the first step >= from outside the committed spans of id.
func (l *ledger) after(id, from int) int {
	list := l.blocked[id]
	k := sort.Search(len(list), func(k int) bool { return list[k].hi >= from })
	if k < len(list) && list[k].lo <= from {
		return list[k].hi + 1
	}
	return from
}

// earliest returns the first step >= from at which route id can be released,
// given the committed reservations and the uncommitted ones in pending.
func (l *ledger) earliest(id, from int, pending []placement) int {
	s := from
	for {
		s = l.after(id, s)
		moved := false
		for _, p := range pending {
			if !l.conflict[id][p.id] {
				continue
			}
			if w := l.window(id, p); s >= w.lo && s <= w.hi {
				s = w.hi + 1
				moved = true
			}
		}
		if !moved {
			return s
		}
	}
}

func (l *ledger) reserve(id, step int) {
	p := placement{id: id, step: step}
	l.live = append(l.live, p)
	for other := range l.routes {
		if l.conflict[other][id] {
			l.blocked[other] = insertSpan(l.blocked[other], l.window(other, p))
		}
	}
}

// prune drops reservations and spans that can no longer constrain releases
// at or after step.
func (l *ledger) prune(step int) {
	kept := l.live[:0]
	for _, p := range l.live {
		if p.step+max(l.conflictHeadway, l.followHeadway) > step {
			kept = append(kept, p)
		}
	}
	l.live = kept
	for i, list := range l.blocked {
		k := sort.Search(len(list), func(k int) bool { return list[k].hi >= step })
		l.blocked[i] = list[k:]
	}
}
