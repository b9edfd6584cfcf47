package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoTablePutAndGet(t *testing.T) {
	m := NewMemoTable()
	_, ok := m.Get(0, 5)
	assert.False(t, ok)

	m.Put(0, 5, Result{OK: true, Consumed: 3, Examined: 3})
	res, ok := m.Get(0, 5)
	require.True(t, ok)
	assert.True(t, res.OK)
	assert.Equal(t, uint32(3), res.Consumed)
}

func TestMemoTableSkipsZeroExamined(t *testing.T) {
	m := NewMemoTable()
	m.Put(0, 5, Result{OK: true, Consumed: 0, Examined: 0})
	_, ok := m.Get(0, 5)
	assert.False(t, ok, "an entry with Examined < 1 must not be stored")
}

func TestMemoTableDistinctRuleIDsDoNotCollide(t *testing.T) {
	m := NewMemoTable()
	m.Put(0, 5, Result{OK: true, Consumed: 1, Examined: 1})
	m.Put(1, 5, Result{OK: true, Consumed: 2, Examined: 2})
	r0, _ := m.Get(0, 5)
	r1, _ := m.Get(1, 5)
	assert.Equal(t, uint32(1), r0.Consumed)
	assert.Equal(t, uint32(2), r1.Consumed)
}

func TestApplyEditDropsColumnsInsideEditedRange(t *testing.T) {
	m := NewMemoTable()
	m.Put(0, 5, Result{OK: true, Consumed: 1, Examined: 1})
	m.ApplyEdit(5, 6, 0) // delete one unit at position 5
	_, ok := m.Get(0, 5)
	assert.False(t, ok)
}

func TestApplyEditShiftsColumnsAfterEdit(t *testing.T) {
	m := NewMemoTable()
	m.Put(0, 10, Result{OK: true, Consumed: 1, Examined: 1})
	m.ApplyEdit(2, 4, 5) // replace 2 units with 5: delta = +3
	_, ok := m.Get(0, 10)
	assert.False(t, ok, "old position should no longer hold an entry")
	res, ok := m.Get(0, 13)
	require.True(t, ok, "entry should have shifted by delta=+3")
	assert.Equal(t, uint32(1), res.Consumed)
}

func TestApplyEditInvalidatesEntryThatObservedEditedRange(t *testing.T) {
	m := NewMemoTable()
	// At position 0, a rule examined 10 units (e.g. a failed lookahead),
	// which reaches into the edit at [5, 6).
	m.Put(0, 0, Result{Examined: 10})
	m.ApplyEdit(5, 6, 0)
	_, ok := m.Get(0, 0)
	assert.False(t, ok, "entry whose examined window crossed the edit must be invalidated")
}

func TestApplyEditPreservesEntryThatNeverReachedEditedRange(t *testing.T) {
	m := NewMemoTable()
	// At position 0, a rule examined only 2 units, well before the edit at
	// [5, 6).
	m.Put(0, 0, Result{OK: true, Consumed: 2, Examined: 2})
	m.ApplyEdit(5, 6, 0)
	res, ok := m.Get(0, 0)
	require.True(t, ok, "entry untouched by the edit must survive")
	assert.Equal(t, uint32(2), res.Consumed)
}

func TestApplyEditPartialColumnInvalidation(t *testing.T) {
	m := NewMemoTable()
	// Two different rules memoized at the same column 0: one looked far
	// enough to see the edit, one didn't.
	m.Put(0, 0, Result{Examined: 2})  // survives: 0+2 <= 5
	m.Put(1, 0, Result{Examined: 20}) // invalidated: 0+20 > 5
	m.ApplyEdit(5, 6, 0)

	_, ok0 := m.Get(0, 0)
	assert.True(t, ok0)
	_, ok1 := m.Get(1, 0)
	assert.False(t, ok1)
}
