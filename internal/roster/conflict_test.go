package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

func TestDetectConflicts(t *testing.T) {
	// 护士甲已有的规则：每周一三五早班，2026-01-01 起永久有效
	existing := []*domain.RecurringScheduleDefinition{
		{
			ID:           1,
			StaffID:      100,
			ShiftType:    domain.ShiftTypeMorning,
			Weekdays:     []int32{1, 3, 5},
			StartDate:    "2026-01-01",
			Active:       true,
			FacilityName: "内科病区",
		},
	}

	testCases := []struct {
		name     string
		cand     Candidate
		expected []domain.ConflictReport
	}{
		{
			name: "同员工同班次类型且星期和日期都相交时冲突",
			cand: Candidate{
				StaffID:   100,
				ShiftType: domain.ShiftTypeMorning,
				StartDate: "2026-02-01",
				EndDate:   strPtr("2026-06-30"),
				Weekdays:  []int32{3, 4},
			},
			expected: []domain.ConflictReport{
				{ConflictingDefinitionID: 1, FacilityName: "内科病区", ConflictingWeekdays: []int32{3}},
			},
		},
		{
			name: "不同班次类型同一天不冲突",
			cand: Candidate{
				StaffID:   100,
				ShiftType: domain.ShiftTypeNight,
				StartDate: "2026-02-01",
				Weekdays:  []int32{1, 3, 5},
			},
			expected: []domain.ConflictReport{},
		},
		{
			name: "不同员工不冲突",
			cand: Candidate{
				StaffID:   200,
				ShiftType: domain.ShiftTypeMorning,
				StartDate: "2026-02-01",
				Weekdays:  []int32{1, 3, 5},
			},
			expected: []domain.ConflictReport{},
		},
		{
			name: "星期几集合不相交时不冲突",
			cand: Candidate{
				StaffID:   100,
				ShiftType: domain.ShiftTypeMorning,
				StartDate: "2026-02-01",
				Weekdays:  []int32{0, 2, 6},
			},
			expected: []domain.ConflictReport{},
		},
		{
			name: "日期区间在已有规则开始前结束时不冲突",
			cand: Candidate{
				StaffID:   100,
				ShiftType: domain.ShiftTypeMorning,
				StartDate: "2025-06-01",
				EndDate:   strPtr("2026-01-01"),
				Weekdays:  []int32{1, 3, 5},
			},
			expected: []domain.ConflictReport{},
		},
		{
			name: "编辑时排除自身不冲突",
			cand: Candidate{
				StaffID:             100,
				ShiftType:           domain.ShiftTypeMorning,
				StartDate:           "2026-01-01",
				Weekdays:            []int32{1, 3, 5},
				ExcludeDefinitionID: int64Ptr(1),
			},
			expected: []domain.ConflictReport{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reports, err := DetectConflicts(tc.cand, existing)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, reports)
		})
	}
}

func TestDetectConflictsSkipsInactive(t *testing.T) {
	existing := []*domain.RecurringScheduleDefinition{
		{
			ID:        1,
			StaffID:   100,
			ShiftType: domain.ShiftTypeMorning,
			Weekdays:  []int32{1},
			StartDate: "2026-01-01",
			Active:    false,
		},
	}

	reports, err := DetectConflicts(Candidate{
		StaffID:   100,
		ShiftType: domain.ShiftTypeMorning,
		StartDate: "2026-01-01",
		Weekdays:  []int32{1},
	}, existing)

	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestDetectConflictsReportsAllConflicts(t *testing.T) {
	existing := []*domain.RecurringScheduleDefinition{
		{
			ID:           1,
			StaffID:      100,
			ShiftType:    domain.ShiftTypeAfternoon,
			Weekdays:     []int32{1, 2},
			StartDate:    "2026-01-01",
			Active:       true,
			FacilityName: "内科病区",
		},
		{
			ID:           2,
			StaffID:      100,
			ShiftType:    domain.ShiftTypeAfternoon,
			Weekdays:     []int32{4, 5},
			StartDate:    "2026-01-01",
			EndDate:      strPtr("2026-12-31"),
			Active:       true,
			FacilityName: "急诊科",
		},
	}

	reports, err := DetectConflicts(Candidate{
		StaffID:   100,
		ShiftType: domain.ShiftTypeAfternoon,
		StartDate: "2026-06-01",
		Weekdays:  []int32{2, 4},
	}, existing)

	require.NoError(t, err)
	// 结果保持 existing 的顺序
	assert.Equal(t, []domain.ConflictReport{
		{ConflictingDefinitionID: 1, FacilityName: "内科病区", ConflictingWeekdays: []int32{2}},
		{ConflictingDefinitionID: 2, FacilityName: "急诊科", ConflictingWeekdays: []int32{4}},
	}, reports)
}

func TestDetectConflictsInvalidDates(t *testing.T) {
	_, err := DetectConflicts(Candidate{
		StaffID:   100,
		ShiftType: domain.ShiftTypeMorning,
		StartDate: "not-a-date",
		Weekdays:  []int32{1},
	}, nil)
	assert.Error(t, err)

	_, err = DetectConflicts(Candidate{
		StaffID:   100,
		ShiftType: domain.ShiftTypeMorning,
		StartDate: "2026-01-01",
		Weekdays:  []int32{1},
	}, []*domain.RecurringScheduleDefinition{
		{
			ID:        1,
			StaffID:   100,
			ShiftType: domain.ShiftTypeMorning,
			Weekdays:  []int32{1},
			StartDate: "bad-date",
			Active:    true,
		},
	})
	assert.Error(t, err)
}

func int64Ptr(v int64) *int64 {
	return &v
}
