package domain

import "time"

type DurationType string

const (
	DurationTypePermanent DurationType = "permanent"
	DurationTypeTemporary DurationType = "temporary"
)

// RecurringScheduleDefinition 描述了某个员工每周固定重复的排班规则。
// Weekdays 中 0 表示周日，6 表示周六。EndDate 为 nil 时表示规则永久有效，
// 只有 DurationType 为 permanent 时才允许为 nil。
type RecurringScheduleDefinition struct {
	ID             int64        `json:"id"`
	StaffID        int64        `json:"staffID"`
	OrganizationID int64        `json:"organizationID"`
	FacilityID     int64        `json:"facilityID"`
	SectorID       *int64       `json:"sectorID"`
	ShiftType      ShiftType    `json:"shiftType"`
	Weekdays       []int32      `json:"weekdays"`
	DurationType   DurationType `json:"durationType"`
	StartDate      string       `json:"startDate"` // 格式为 2006-01-02 的本地日历日期
	EndDate        *string      `json:"endDate"`
	Active         bool         `json:"active"`
	CreatedAt      time.Time    `json:"createdAt"`
	Version        int32        `json:"-"`

	// 查询时联表带出，便于前端展示
	StaffName    string `json:"staffName,omitempty"`
	FacilityName string `json:"facilityName,omitempty"`
}

// ConflictReport 是冲突检测的结果，仅用于展示，不落库
type ConflictReport struct {
	ConflictingDefinitionID int64   `json:"conflictingDefinitionID"`
	FacilityName            string  `json:"facilityName"`
	ConflictingWeekdays     []int32 `json:"conflictingWeekdays"`
}
