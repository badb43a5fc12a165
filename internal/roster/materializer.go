package roster

import (
	"fmt"
	"time"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

// ShiftStore 是物化器对存储层的依赖，由 repository 实现
type ShiftStore interface {
	// GetMaterializedDates 返回某条规则已生成班次的日期集合，key 的格式为 DateLayout
	GetMaterializedDates(definitionID int64) (map[string]bool, error)
	CreateShiftsBulk(shifts []*domain.MaterializedShift) error
	// DeleteFutureShifts 只删除开始时间不早于 now 的班次，历史班次永远不动
	DeleteFutureShifts(definitionID int64, now time.Time) error
}

// Materializer 负责把排班规则展开成具体班次，并维持规则变更后班次与规则的一致。
// 展开只在一个有限的前向窗口内进行，窗口长度由配置决定。
type Materializer struct {
	store         ShiftStore
	horizonMonths int
}

func NewMaterializer(store ShiftStore, horizonMonths int) *Materializer {
	return &Materializer{
		store:         store,
		horizonMonths: horizonMonths,
	}
}

// HorizonEnd 返回以 now 为基准的展开窗口的结束日期（不含）
func (m *Materializer) HorizonEnd(now time.Time) time.Time {
	return DateOf(now).AddDate(0, m.horizonMonths, 0)
}

// Generate 为一条规则生成窗口内所有缺失的班次，返回新生成的数量。
// 幂等：已经生成过的日期会被跳过，重复调用不会产生重复班次。
// 星期几集合为空时不报错，直接返回 0。
func (m *Materializer) Generate(def *domain.RecurringScheduleDefinition, now time.Time) (int, error) {
	if len(def.Weekdays) == 0 {
		return 0, nil
	}

	clock, exists := def.ShiftType.Clock()
	if !exists {
		return 0, fmt.Errorf("未知的班次类型: %s", def.ShiftType)
	}

	start, err := ParseDate(def.StartDate)
	if err != nil {
		return 0, fmt.Errorf("规则的开始日期格式错误: %w", err)
	}

	// 窗口的结束日期取规则结束日期和配置窗口的较小者，
	// 永久规则虽然逻辑上无界，但也只会展开到窗口为止
	end := m.HorizonEnd(now)
	if def.EndDate != nil {
		defEnd, err := ParseDate(*def.EndDate)
		if err != nil {
			return 0, fmt.Errorf("规则的结束日期格式错误: %w", err)
		}
		if defEnd.Before(end) {
			end = defEnd
		}
	}

	existing, err := m.store.GetMaterializedDates(def.ID)
	if err != nil {
		return 0, err
	}

	weekdaySet := make(map[time.Weekday]bool, len(def.Weekdays))
	for _, day := range def.Weekdays {
		weekdaySet[time.Weekday(day)] = true
	}

	shifts := make([]*domain.MaterializedShift, 0)

	for date := start; date.Before(end); date = date.AddDate(0, 0, 1) {
		if !weekdaySet[date.Weekday()] {
			continue
		}
		if existing[date.Format(DateLayout)] {
			continue
		}

		year, month, day := date.Date()
		startTime := time.Date(year, month, day, clock.StartHour, clock.StartMin, 0, 0, time.Local)
		endTime := time.Date(year, month, day, clock.EndHour, clock.EndMin, 0, 0, time.Local)
		if !endTime.After(startTime) {
			// 夜班跨过午夜，下班时间在次日
			endTime = endTime.AddDate(0, 0, 1)
		}

		shifts = append(shifts, &domain.MaterializedShift{
			DefinitionID:   def.ID,
			StaffID:        def.StaffID,
			OrganizationID: def.OrganizationID,
			FacilityID:     def.FacilityID,
			SectorID:       def.SectorID,
			StartTime:      startTime,
			EndTime:        endTime,
			Status:         domain.ShiftStatusPending,
		})
	}

	if len(shifts) == 0 {
		return 0, nil
	}

	if err := m.store.CreateShiftsBulk(shifts); err != nil {
		return 0, err
	}

	return len(shifts), nil
}

// DeleteFutureShifts 删除规则在 now 之后的所有班次，用于规则编辑前的清理和规则删除
func (m *Materializer) DeleteFutureShifts(definitionID int64, now time.Time) error {
	return m.store.DeleteFutureShifts(definitionID, now)
}
