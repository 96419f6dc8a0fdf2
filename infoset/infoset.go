// Package infoset implements the per-information-set regret and cumulative-
// strategy storage: one mutable slot per player InfoSet, supporting
// concurrent updates from many CFR/MCCFR iterations with minimum
// contention.
//
// It is the Go analogue of original_source/cfr_plus.h and mccfr.h's
// `Shard` (alignas(64) struct holding a regret/strategy vector guarded by a
// spinning atomic<bool>), generalized to variable fan-out entries that are
// each allocated separately and reached through one slice of pointers.
package infoset

import (
	"sync/atomic"

	"github.com/lascar-pacagi/gtocfr"
	"github.com/lascar-pacagi/gtocfr/internal/vecmath"
	"github.com/lascar-pacagi/gtocfr/tree"
)

// entryPadding brings each Entry to 64 bytes so that each separately
// allocated Entry fills a whole cache-line-sized allocation and no two
// entries' spin locks share one. Go has no portable "alignas(64)" directive
// (the C++ original uses one on CFRPlus::Shard/MCCFR::Shard); Table holds
// []*Entry, and each Entry's regret/strategy floats live in their own
// separate slice allocation.
const entryPadding = 64 - 24 /* regretsAndStrategy slice header */ - 4 /* n */ - 4 /* locked */

// Entry holds the regret and cumulative-strategy vectors for a single
// player InfoSet: a contiguous array of length 2n, where the first n slots
// are regrets R[a] and the next n are cumulative strategy S[a].
type Entry struct {
	regretsAndStrategy []float64
	n                  int32
	locked             atomic.Bool
	_                  [entryPadding]byte
}

func newEntry(n int) *Entry {
	return &Entry{
		regretsAndStrategy: make([]float64, 2*n),
		n:                  int32(n),
	}
}

// NumActions returns the fan-out this entry was sized for.
func (e *Entry) NumActions() int { return int(e.n) }

func (e *Entry) lock() {
	for !e.locked.CompareAndSwap(false, true) {
		// Spin; critical sections below are O(n) arithmetic and short.
	}
}

func (e *Entry) unlock() {
	e.locked.Store(false)
}

// RawRegrets returns a copy of the current regret vector R[a]. locked
// selects whether the read is taken under the spin lock. Vanilla, Linear
// and DCFR tolerate an unlocked, momentarily mixed view; CFR+
// must read locked since its regrets are clamped on write.
func (e *Entry) RawRegrets(locked bool) []float64 {
	if locked {
		e.lock()
		out := append([]float64(nil), e.regretsAndStrategy[:e.n]...)
		e.unlock()
		return out
	}
	return append([]float64(nil), e.regretsAndStrategy[:e.n]...)
}

// CurrentStrategy applies Regret Matching to the entry's regret vector:
// strategy[a] = max(R[a],0) normalized to sum 1, or uniform if all
// non-positive. locked selects whether the read is taken under the spin
// lock (required for CFR+, optional for vanilla/Linear/DCFR).
func (e *Entry) CurrentStrategy(locked bool) []float64 {
	strat := e.RawRegrets(locked)
	vecmath.MakePositive(strat)
	total := vecmath.Sum(strat)
	if total > 0 {
		vecmath.ScalUnitary(1.0/total, strat)
	} else {
		return vecmath.Uniform(int(e.n))
	}
	return strat
}

// AverageStrategy normalizes the cumulative-strategy vector S, falling back
// to uniform when its sum is zero.
func (e *Entry) AverageStrategy() []float64 {
	e.lock()
	s := append([]float64(nil), e.regretsAndStrategy[e.n:2*e.n]...)
	e.unlock()

	total := vecmath.Sum(s)
	if total <= 0 {
		return vecmath.Uniform(int(e.n))
	}
	out := make([]float64, len(s))
	vecmath.ScalUnitaryTo(out, 1.0/total, s)
	return out
}

// Accumulate adds deltaRegret and deltaStrategy element-wise into the
// entry's regret and cumulative-strategy vectors under the spin lock. When
// floorRegretAtZero is set (the CFR+ discipline), regrets are clamped to
// non-negative immediately after the add, preserving the invariant
// R[a] >= 0 at all times.
func (e *Entry) Accumulate(deltaRegret, deltaStrategy []float64, floorRegretAtZero bool) {
	e.lock()
	vecmath.Add(e.regretsAndStrategy[:e.n], deltaRegret)
	if floorRegretAtZero {
		vecmath.MakePositive(e.regretsAndStrategy[:e.n])
	}
	vecmath.Add(e.regretsAndStrategy[e.n:2*e.n], deltaStrategy)
	e.unlock()
}

// Table maps every tree node index to the Entry for its player InfoSet,
// deduplicating entries that share an InfoSet. Chance and terminal nodes
// have no entry.
type Table struct {
	entries       []*Entry
	nodeToEntry   []int32 // -1 for chance/terminal nodes
	infoSetToSlot map[gtocfr.InfoSet]int32
}

// NewTable allocates one Entry per distinct player InfoSet observed in t,
// built in a single linear scan over t's nodes (relying on the tree's DFS
// invariant that child indices exceed their parent's, so no separate
// recursion is needed to enumerate nodes). This mirrors CFRPlus::init /
// MCCFR::init's transient info_set_to_shard_idx map.
func NewTable(t *tree.Tree) *Table {
	tbl := &Table{
		nodeToEntry:   make([]int32, t.NumNodes()),
		infoSetToSlot: make(map[gtocfr.InfoSet]int32),
	}

	for idx := 0; idx < t.NumNodes(); idx++ {
		if t.IsTerminal(idx) {
			tbl.nodeToEntry[idx] = -1
			continue
		}

		player, n := t.Kind(idx)
		if player == gtocfr.Chance {
			tbl.nodeToEntry[idx] = -1
			continue
		}

		is := t.InfoSet(idx)
		slot, ok := tbl.infoSetToSlot[is]
		if !ok {
			slot = int32(len(tbl.entries))
			tbl.infoSetToSlot[is] = slot
			tbl.entries = append(tbl.entries, newEntry(n))
		}
		tbl.nodeToEntry[idx] = slot
	}

	return tbl
}

// Entry returns the Entry backing tree node idx. It panics if idx is a
// chance or terminal node, which never have regret/strategy storage.
func (tbl *Table) Entry(idx int) *Entry {
	slot := tbl.nodeToEntry[idx]
	if slot < 0 {
		panic("infoset: no entry for chance/terminal node")
	}
	return tbl.entries[slot]
}

// NumInfoSets returns the number of distinct player InfoSets tracked.
func (tbl *Table) NumInfoSets() int { return len(tbl.entries) }
