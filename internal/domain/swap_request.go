package domain

import "time"

type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "pending"
	SwapStatusApproved SwapStatus = "approved"
	SwapStatusDeclined SwapStatus = "declined"
)

// SwapRequest 表示一次换班申请：申请人希望把自己的某个班次转给目标员工。
// 申请被批准后班次会被改派给目标员工。
type SwapRequest struct {
	ID          int64      `json:"id"`
	ShiftID     int64      `json:"shiftID"`
	RequesterID int64      `json:"requesterID"`
	TargetID    int64      `json:"targetID"`
	Reason      string     `json:"reason"`
	Status      SwapStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	Version     int32      `json:"-"`

	RequesterName string     `json:"requesterName,omitempty"`
	TargetName    string     `json:"targetName,omitempty"`
	ShiftStart    *time.Time `json:"shiftStart,omitempty"`
	ShiftEnd      *time.Time `json:"shiftEnd,omitempty"`
}
