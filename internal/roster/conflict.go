package roster

import (
	"fmt"
	"time"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

// Candidate 是待检测的排班规则字段，来自表单的创建或编辑请求。
// 编辑已有规则时通过 ExcludeDefinitionID 排除自身，避免自己和自己冲突。
type Candidate struct {
	StaffID             int64
	ShiftType           domain.ShiftType
	StartDate           string
	EndDate             *string
	Weekdays            []int32
	ExcludeDefinitionID *int64
}

// DetectConflicts 在已有的规则中找出与候选规则冲突的规则。
// 两条规则冲突当且仅当：同一员工、同一班次类型、星期几集合相交、日期区间相交。
// 返回结果保持 existing 的顺序，空结果表示没有冲突。
func DetectConflicts(cand Candidate, existing []*domain.RecurringScheduleDefinition) ([]domain.ConflictReport, error) {
	candStart, err := ParseDate(cand.StartDate)
	if err != nil {
		return nil, fmt.Errorf("候选规则的开始日期格式错误: %w", err)
	}

	var candEnd *time.Time
	if cand.EndDate != nil {
		end, err := ParseDate(*cand.EndDate)
		if err != nil {
			return nil, fmt.Errorf("候选规则的结束日期格式错误: %w", err)
		}
		candEnd = &end
	}

	reports := make([]domain.ConflictReport, 0)

	for _, def := range existing {
		if !def.Active {
			continue
		}
		if cand.ExcludeDefinitionID != nil && def.ID == *cand.ExcludeDefinitionID {
			continue
		}
		if def.StaffID != cand.StaffID || def.ShiftType != cand.ShiftType {
			continue
		}

		overlapDays := WeekdaysOverlap(cand.Weekdays, def.Weekdays)
		if len(overlapDays) == 0 {
			continue
		}

		defStart, err := ParseDate(def.StartDate)
		if err != nil {
			return nil, fmt.Errorf("规则 %d 的开始日期格式错误: %w", def.ID, err)
		}
		var defEnd *time.Time
		if def.EndDate != nil {
			end, err := ParseDate(*def.EndDate)
			if err != nil {
				return nil, fmt.Errorf("规则 %d 的结束日期格式错误: %w", def.ID, err)
			}
			defEnd = &end
		}

		if !RangesOverlap(candStart, candEnd, defStart, defEnd) {
			continue
		}

		reports = append(reports, domain.ConflictReport{
			ConflictingDefinitionID: def.ID,
			FacilityName:            def.FacilityName,
			ConflictingWeekdays:     overlapDays,
		})
	}

	return reports, nil
}
