package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

func TestValidateWeekdays(t *testing.T) {
	testCases := []struct {
		name      string
		weekdays  []int32
		expectErr bool
	}{
		{name: "合法集合", weekdays: []int32{0, 3, 6}, expectErr: false},
		{name: "单个元素", weekdays: []int32{1}, expectErr: false},
		{name: "整周", weekdays: []int32{0, 1, 2, 3, 4, 5, 6}, expectErr: false},
		{name: "空集合", weekdays: []int32{}, expectErr: true},
		{name: "超出范围", weekdays: []int32{7}, expectErr: true},
		{name: "负数", weekdays: []int32{-1}, expectErr: true},
		{name: "重复元素", weekdays: []int32{1, 1}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateWeekdays(tc.weekdays)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDefinitionDates(t *testing.T) {
	endDate := func(s string) *string { return &s }

	testCases := []struct {
		name         string
		durationType domain.DurationType
		startDate    string
		endDate      *string
		expectErr    bool
	}{
		{
			name:         "永久规则没有结束日期",
			durationType: domain.DurationTypePermanent,
			startDate:    "2026-01-01",
			endDate:      nil,
			expectErr:    false,
		},
		{
			name:         "永久规则不允许填写结束日期",
			durationType: domain.DurationTypePermanent,
			startDate:    "2026-01-01",
			endDate:      endDate("2026-06-30"),
			expectErr:    true,
		},
		{
			name:         "临时规则结束日期晚于开始日期",
			durationType: domain.DurationTypeTemporary,
			startDate:    "2026-01-01",
			endDate:      endDate("2026-06-30"),
			expectErr:    false,
		},
		{
			name:         "临时规则缺少结束日期",
			durationType: domain.DurationTypeTemporary,
			startDate:    "2026-01-01",
			endDate:      nil,
			expectErr:    true,
		},
		{
			name:         "临时规则结束日期等于开始日期",
			durationType: domain.DurationTypeTemporary,
			startDate:    "2026-01-01",
			endDate:      endDate("2026-01-01"),
			expectErr:    true,
		},
		{
			name:         "临时规则结束日期早于开始日期",
			durationType: domain.DurationTypeTemporary,
			startDate:    "2026-06-30",
			endDate:      endDate("2026-01-01"),
			expectErr:    true,
		},
		{
			name:         "开始日期格式错误",
			durationType: domain.DurationTypePermanent,
			startDate:    "2026/01/01",
			endDate:      nil,
			expectErr:    true,
		},
		{
			name:         "未知的规则类型",
			durationType: domain.DurationType("forever"),
			startDate:    "2026-01-01",
			endDate:      nil,
			expectErr:    true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDefinitionDates(tc.durationType, tc.startDate, tc.endDate)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
