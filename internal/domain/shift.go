package domain

import "time"

type ShiftStatus string

const (
	ShiftStatusPending  ShiftStatus = "pending"
	ShiftStatusAccepted ShiftStatus = "accepted"
	ShiftStatusDeclined ShiftStatus = "declined"
)

// MaterializedShift 是由排班规则展开得到的具体班次。
// 生成后它的状态可以被员工独立修改，不会反过来影响规则本身。
type MaterializedShift struct {
	ID             int64       `json:"id"`
	DefinitionID   int64       `json:"definitionID"`
	StaffID        int64       `json:"staffID"`
	OrganizationID int64       `json:"organizationID"`
	FacilityID     int64       `json:"facilityID"`
	SectorID       *int64      `json:"sectorID"`
	StartTime      time.Time   `json:"startTime"`
	EndTime        time.Time   `json:"endTime"`
	Status         ShiftStatus `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
	Version        int32       `json:"-"`

	StaffName    string `json:"staffName,omitempty"`
	FacilityName string `json:"facilityName,omitempty"`
}
