package result

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLessOrdersByPathThenLineThenColumn(t *testing.T) {
	a := MatchRecord{Path: "a.txt", LineNumber: 1, ColumnStart: 0, ColumnEnd: 1}
	b := MatchRecord{Path: "a.txt", LineNumber: 1, ColumnStart: 2, ColumnEnd: 3}
	c := MatchRecord{Path: "b.txt", LineNumber: 1, ColumnStart: 0, ColumnEnd: 1}

	assert.True(t, Less(a, b))
	assert.False(t, Less(b, a))
	assert.True(t, Less(a, c))
	assert.True(t, Less(b, c))
}

func TestSortIsStableAndTotal(t *testing.T) {
	matches := []MatchRecord{
		{Path: "b.txt", LineNumber: 1, ColumnStart: 0},
		{Path: "a.txt", LineNumber: 2, ColumnStart: 0},
		{Path: "a.txt", LineNumber: 1, ColumnStart: 5},
		{Path: "a.txt", LineNumber: 1, ColumnStart: 0},
	}
	Sort(matches)

	want := []string{"a.txt:1:0", "a.txt:1:5", "a.txt:2:0", "b.txt:1:0"}
	got := make([]string, len(matches))
	for i, m := range matches {
		got[i] = m.Path + ":" + strconv.Itoa(m.LineNumber) + ":" + strconv.Itoa(m.ColumnStart)
	}
	assert.Equal(t, want, got)
}

func TestTruncateCapsAfterSort(t *testing.T) {
	matches := []MatchRecord{{Path: "a"}, {Path: "b"}, {Path: "c"}}
	assert.Len(t, Truncate(matches, 2), 2)
	assert.Len(t, Truncate(matches, 0), 3)
	assert.Len(t, Truncate(matches, 10), 3)
}
