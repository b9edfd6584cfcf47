package parser

// ruleID identifies a Memoize-wrapped rule within a MemoTable. IDs are
// assigned by Builder at grammar-construction time and are stable for
// the lifetime of the grammar.
type ruleID int

// memoEntry is one cached application of a memoized rule at a given
// column (position). Examined records how far the original Apply call
// looked into the buffer to produce this result; ApplyEdit uses it to
// decide whether an edit could have changed the outcome.
type memoEntry struct {
	result   Result
	examined uint32
}

// column holds every memoized rule result recorded at one buffer
// position, plus the max Examined across them, so ApplyEdit can reject
// a whole column in O(1) when it obviously can't be touched by an edit
// that starts further away than any entry looked.
type column struct {
	entries     map[ruleID]memoEntry
	maxExamined uint32
}

// MemoTable is a packrat memoization table keyed by (position, rule),
// supporting the Dubroy-Warth incremental edit-invalidation algorithm:
// after an edit, instead of discarding the whole table, only entries
// whose recorded Examined window could have overlapped the edited
// range are dropped, and surviving entries at positions after the edit
// are shifted to track their rule's new logical position.
type MemoTable struct {
	columns map[uint32]*column
}

// NewMemoTable returns an empty table.
func NewMemoTable() *MemoTable {
	return &MemoTable{columns: make(map[uint32]*column)}
}

// Get returns the memoized result for (id, pos), if any.
func (m *MemoTable) Get(id ruleID, pos uint32) (Result, bool) {
	col, ok := m.columns[pos]
	if !ok {
		return Result{}, false
	}
	e, ok := col.entries[id]
	if !ok {
		return Result{}, false
	}
	return e.result, true
}

// Put records result for (id, pos). Per the Result contract, entries
// with Examined < 1 carry no information an edit could invalidate
// against and are not stored.
func (m *MemoTable) Put(id ruleID, pos uint32, result Result) {
	if result.Examined < 1 {
		return
	}
	col, ok := m.columns[pos]
	if !ok {
		col = &column{entries: make(map[ruleID]memoEntry)}
		m.columns[pos] = col
	}
	col.entries[id] = memoEntry{result: result, examined: result.Examined}
	if result.Examined > col.maxExamined {
		col.maxExamined = result.Examined
	}
}

// ApplyEdit updates the table to reflect a replacement of the raw
// range [lo, hi) with newLen code units, per the Dubroy-Warth
// incremental invalidation algorithm:
//
//  1. Resize: every column at or after hi is a cached result that
//     described content which has now moved; it's relocated to
//     c + delta, where delta = newLen - (hi - lo).
//  2. Clear: every column in [lo, lo+newLen) describes content that no
//     longer exists in the same shape (it's the replacement itself, or
//     was shifted out from under a partially-overlapping memo entry);
//     it's dropped outright.
//  3. Invalidate overlap: for columns before lo, an entry survives only
//     if its Examined window didn't reach into the edited range - that
//     is, only if c + entry.examined <= lo. Entries that looked far
//     enough to have seen content in [lo, hi) are dropped, since that
//     content (or its absence) may have changed.
func (m *MemoTable) ApplyEdit(lo, hi, newLen uint32) {
	delta := int64(newLen) - int64(hi-lo)

	shifted := make(map[uint32]*column, len(m.columns))
	for pos, col := range m.columns {
		switch {
		case pos < lo:
			shifted[pos] = col
		case pos >= hi:
			newPos := uint32(int64(pos) + delta)
			shifted[newPos] = col
		default:
			// Dropped: pos is in [lo, hi), wholly inside the edited range.
		}
	}
	m.columns = shifted

	for pos, col := range m.columns {
		if pos >= lo {
			continue
		}
		if pos+col.maxExamined <= lo {
			// This column's furthest lookahead never reached the edit;
			// nothing in it needs to be touched.
			continue
		}
		var newMax uint32
		for id, e := range col.entries {
			if pos+e.examined > lo {
				delete(col.entries, id)
				continue
			}
			if e.examined > newMax {
				newMax = e.examined
			}
		}
		col.maxExamined = newMax
	}
}
