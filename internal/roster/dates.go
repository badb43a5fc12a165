package roster

import (
	"sort"
	"time"
)

// 排班规则中的日期都是本地日历日期，解析和格式化都必须使用本地时区，
// 否则在临近午夜的时候生成的班次会落到错误的一天上
const DateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// DateOf 把一个时间戳截断为它所在的本地日历日期
func DateOf(t time.Time) time.Time {
	year, month, day := t.Local().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// RangesOverlap 判断两个日期区间是否相交。
// 区间左闭右开，end 为 nil 表示区间无界（永久规则）。
// 相交条件：startA < endB 且 startB < endA
func RangesOverlap(startA time.Time, endA *time.Time, startB time.Time, endB *time.Time) bool {
	if endB != nil && !startA.Before(*endB) {
		return false
	}
	if endA != nil && !startB.Before(*endA) {
		return false
	}
	return true
}

// WeekdaysOverlap 返回两个星期几集合的交集，结果升序排列
func WeekdaysOverlap(a []int32, b []int32) []int32 {
	inA := make(map[int32]bool, len(a))
	for _, day := range a {
		inA[day] = true
	}

	overlapSet := make(map[int32]bool)
	for _, day := range b {
		if inA[day] {
			overlapSet[day] = true
		}
	}

	overlap := make([]int32, 0, len(overlapSet))
	for day := range overlapSet {
		overlap = append(overlap, day)
	}
	sort.Slice(overlap, func(i, j int) bool { return overlap[i] < overlap[j] })

	return overlap
}
