package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseDate(t *testing.T, s string) time.Time {
	t.Helper()
	date, err := ParseDate(s)
	require.NoError(t, err)
	return date
}

func datePtr(t *testing.T, s string) *time.Time {
	t.Helper()
	date := mustParseDate(t, s)
	return &date
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, 2026, date.Year())
	assert.Equal(t, time.March, date.Month())
	assert.Equal(t, 15, date.Day())
	assert.Equal(t, time.Local, date.Location())

	_, err = ParseDate("15/03/2026")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2026, time.March, 15, 23, 59, 58, 0, time.Local)
	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.Local), DateOf(ts))
}

func TestRangesOverlap(t *testing.T) {
	testCases := []struct {
		name     string
		startA   string
		endA     *string
		startB   string
		endB     *string
		expected bool
	}{
		{
			name:     "两个有界区间相交",
			startA:   "2026-01-01",
			endA:     strPtr("2026-02-01"),
			startB:   "2026-01-15",
			endB:     strPtr("2026-03-01"),
			expected: true,
		},
		{
			name:     "两个有界区间不相交",
			startA:   "2026-01-01",
			endA:     strPtr("2026-02-01"),
			startB:   "2026-03-01",
			endB:     strPtr("2026-04-01"),
			expected: false,
		},
		{
			name:     "区间首尾相接不算相交",
			startA:   "2026-01-01",
			endA:     strPtr("2026-02-01"),
			startB:   "2026-02-01",
			endB:     strPtr("2026-03-01"),
			expected: false,
		},
		{
			name:     "无界区间与未来的有界区间相交",
			startA:   "2026-01-01",
			endA:     nil,
			startB:   "2030-06-01",
			endB:     strPtr("2030-07-01"),
			expected: true,
		},
		{
			name:     "无界区间开始前结束的有界区间不相交",
			startA:   "2026-06-01",
			endA:     nil,
			startB:   "2026-01-01",
			endB:     strPtr("2026-03-01"),
			expected: false,
		},
		{
			name:     "两个无界区间总是相交",
			startA:   "2026-01-01",
			endA:     nil,
			startB:   "2030-01-01",
			endB:     nil,
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			startA := mustParseDate(t, tc.startA)
			startB := mustParseDate(t, tc.startB)
			var endA, endB *time.Time
			if tc.endA != nil {
				endA = datePtr(t, *tc.endA)
			}
			if tc.endB != nil {
				endB = datePtr(t, *tc.endB)
			}

			assert.Equal(t, tc.expected, RangesOverlap(startA, endA, startB, endB))
			// 相交关系是对称的
			assert.Equal(t, tc.expected, RangesOverlap(startB, endB, startA, endA))
		})
	}
}

func TestWeekdaysOverlap(t *testing.T) {
	testCases := []struct {
		name     string
		a        []int32
		b        []int32
		expected []int32
	}{
		{
			name:     "部分相交",
			a:        []int32{1, 2, 3, 4, 5},
			b:        []int32{5, 3, 1, 0},
			expected: []int32{1, 3, 5},
		},
		{
			name:     "不相交",
			a:        []int32{1, 3, 5},
			b:        []int32{0, 2, 4, 6},
			expected: []int32{},
		},
		{
			name:     "其中一个为空",
			a:        []int32{},
			b:        []int32{0, 1, 2},
			expected: []int32{},
		},
		{
			name:     "重复元素只出现一次",
			a:        []int32{2, 2, 4},
			b:        []int32{4, 2, 2},
			expected: []int32{2, 4},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, WeekdaysOverlap(tc.a, tc.b))
		})
	}
}

func strPtr(s string) *string {
	return &s
}
