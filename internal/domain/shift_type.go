package domain

type ShiftType string

const (
	ShiftTypeMorning   ShiftType = "morning"
	ShiftTypeAfternoon ShiftType = "afternoon"
	ShiftTypeNight     ShiftType = "night"
)

// ShiftClock 描述了某个班次类型固定的上下班时刻
type ShiftClock struct {
	StartHour int
	StartMin  int
	EndHour   int
	EndMin    int
}

// 班次类型到固定上下班时刻的映射，夜班的下班时刻在次日
var shiftClocks = map[ShiftType]ShiftClock{
	ShiftTypeMorning:   {StartHour: 7, StartMin: 0, EndHour: 13, EndMin: 0},
	ShiftTypeAfternoon: {StartHour: 13, StartMin: 0, EndHour: 19, EndMin: 0},
	ShiftTypeNight:     {StartHour: 19, StartMin: 0, EndHour: 7, EndMin: 0},
}

func (st ShiftType) Clock() (ShiftClock, bool) {
	clock, exists := shiftClocks[st]
	return clock, exists
}

func (st ShiftType) IsValid() bool {
	_, exists := shiftClocks[st]
	return exists
}
