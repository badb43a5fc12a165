package roster

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

// fakeShiftStore 是 ShiftStore 的内存实现，行为与数据库版本一致
type fakeShiftStore struct {
	shifts  []*domain.MaterializedShift
	nextID  int64
	failOps bool
}

func (s *fakeShiftStore) GetMaterializedDates(definitionID int64) (map[string]bool, error) {
	if s.failOps {
		return nil, errors.New("存储不可用")
	}

	dates := make(map[string]bool)
	for _, shift := range s.shifts {
		if shift.DefinitionID == definitionID {
			dates[shift.StartTime.Format(DateLayout)] = true
		}
	}
	return dates, nil
}

func (s *fakeShiftStore) CreateShiftsBulk(shifts []*domain.MaterializedShift) error {
	if s.failOps {
		return errors.New("存储不可用")
	}

	for _, shift := range shifts {
		s.nextID++
		shift.ID = s.nextID
		s.shifts = append(s.shifts, shift)
	}
	return nil
}

func (s *fakeShiftStore) DeleteFutureShifts(definitionID int64, now time.Time) error {
	if s.failOps {
		return errors.New("存储不可用")
	}

	kept := s.shifts[:0]
	for _, shift := range s.shifts {
		if shift.DefinitionID == definitionID && !shift.StartTime.Before(now) {
			continue
		}
		kept = append(kept, shift)
	}
	s.shifts = kept
	return nil
}

func (s *fakeShiftStore) shiftDates(definitionID int64) []string {
	dates := make([]string, 0)
	for _, shift := range s.shifts {
		if shift.DefinitionID == definitionID {
			dates = append(dates, shift.StartTime.Format(DateLayout))
		}
	}
	return dates
}

func TestMaterializerGenerate(t *testing.T) {
	// 2026-01-05 是周一
	def := &domain.RecurringScheduleDefinition{
		ID:             1,
		StaffID:        100,
		OrganizationID: 10,
		FacilityID:     20,
		ShiftType:      domain.ShiftTypeMorning,
		Weekdays:       []int32{1, 3, 5},
		DurationType:   domain.DurationTypeTemporary,
		StartDate:      "2026-01-05",
		EndDate:        strPtr("2026-01-12"),
		Active:         true,
	}

	store := &fakeShiftStore{}
	m := NewMaterializer(store, 3)
	now := mustParseDate(t, "2026-01-01")

	count, err := m.Generate(def, now)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	// 结束日期不含在内，2026-01-12 的周一不会生成
	assert.Equal(t, []string{"2026-01-05", "2026-01-07", "2026-01-09"}, store.shiftDates(1))

	for _, shift := range store.shifts {
		assert.Equal(t, int64(100), shift.StaffID)
		assert.Equal(t, int64(10), shift.OrganizationID)
		assert.Equal(t, int64(20), shift.FacilityID)
		assert.Equal(t, domain.ShiftStatusPending, shift.Status)
		assert.Equal(t, 7, shift.StartTime.Hour())
		assert.Equal(t, 13, shift.EndTime.Hour())
	}
}

func TestMaterializerGenerateIdempotent(t *testing.T) {
	def := &domain.RecurringScheduleDefinition{
		ID:        1,
		StaffID:   100,
		ShiftType: domain.ShiftTypeMorning,
		Weekdays:  []int32{1, 3, 5},
		StartDate: "2026-01-05",
		EndDate:   strPtr("2026-01-12"),
	}

	store := &fakeShiftStore{}
	m := NewMaterializer(store, 3)
	now := mustParseDate(t, "2026-01-01")

	count, err := m.Generate(def, now)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// 重复生成不会产生重复班次
	count, err = m.Generate(def, now)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Len(t, store.shifts, 3)
}

func TestMaterializerGenerateEmptyWeekdays(t *testing.T) {
	def := &domain.RecurringScheduleDefinition{
		ID:        1,
		ShiftType: domain.ShiftTypeMorning,
		Weekdays:  []int32{},
		StartDate: "2026-01-05",
	}

	// 星期几集合为空时不访问存储，直接返回 0
	store := &fakeShiftStore{failOps: true}
	m := NewMaterializer(store, 3)

	count, err := m.Generate(def, mustParseDate(t, "2026-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMaterializerGenerateHorizonCap(t *testing.T) {
	// 永久规则只展开到窗口结束为止
	def := &domain.RecurringScheduleDefinition{
		ID:           1,
		ShiftType:    domain.ShiftTypeAfternoon,
		Weekdays:     []int32{1},
		DurationType: domain.DurationTypePermanent,
		StartDate:    "2026-01-05",
	}

	store := &fakeShiftStore{}
	m := NewMaterializer(store, 1)
	now := mustParseDate(t, "2026-01-01")

	count, err := m.Generate(def, now)
	require.NoError(t, err)
	// 2026-02-01 之前的周一：01-05、01-12、01-19、01-26
	assert.Equal(t, 4, count)
	assert.Equal(t, []string{"2026-01-05", "2026-01-12", "2026-01-19", "2026-01-26"}, store.shiftDates(1))
}

func TestMaterializerGenerateNightShiftCrossesMidnight(t *testing.T) {
	def := &domain.RecurringScheduleDefinition{
		ID:        1,
		ShiftType: domain.ShiftTypeNight,
		Weekdays:  []int32{1},
		StartDate: "2026-01-05",
		EndDate:   strPtr("2026-01-06"),
	}

	store := &fakeShiftStore{}
	m := NewMaterializer(store, 3)

	count, err := m.Generate(def, mustParseDate(t, "2026-01-01"))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	shift := store.shifts[0]
	assert.Equal(t, time.Date(2026, time.January, 5, 19, 0, 0, 0, time.Local), shift.StartTime)
	// 夜班的下班时间在次日早上
	assert.Equal(t, time.Date(2026, time.January, 6, 7, 0, 0, 0, time.Local), shift.EndTime)
}

func TestMaterializerGenerateUnknownShiftType(t *testing.T) {
	def := &domain.RecurringScheduleDefinition{
		ID:        1,
		ShiftType: domain.ShiftType("overnight"),
		Weekdays:  []int32{1},
		StartDate: "2026-01-05",
	}

	m := NewMaterializer(&fakeShiftStore{}, 3)
	_, err := m.Generate(def, mustParseDate(t, "2026-01-01"))
	assert.Error(t, err)
}

func TestMaterializerGenerateStoreError(t *testing.T) {
	def := &domain.RecurringScheduleDefinition{
		ID:        1,
		ShiftType: domain.ShiftTypeMorning,
		Weekdays:  []int32{1},
		StartDate: "2026-01-05",
	}

	m := NewMaterializer(&fakeShiftStore{failOps: true}, 3)
	_, err := m.Generate(def, mustParseDate(t, "2026-01-01"))
	assert.Error(t, err)
}

func TestMaterializerRegenerateAfterEdit(t *testing.T) {
	def := &domain.RecurringScheduleDefinition{
		ID:        1,
		StaffID:   100,
		ShiftType: domain.ShiftTypeMorning,
		Weekdays:  []int32{1, 2, 3, 4, 5},
		StartDate: "2026-01-05",
		EndDate:   strPtr("2026-01-19"),
	}

	store := &fakeShiftStore{}
	m := NewMaterializer(store, 3)

	count, err := m.Generate(def, mustParseDate(t, "2026-01-01"))
	require.NoError(t, err)
	// 两个完整工作周
	require.Equal(t, 10, count)

	// 第一周结束后把规则改成一三五
	now := mustParseDate(t, "2026-01-12")
	require.NoError(t, m.DeleteFutureShifts(def.ID, now))
	def.Weekdays = []int32{1, 3, 5}

	count, err = m.Generate(def, now)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// 第一周的历史班次保持原样，第二周只剩一三五
	assert.Equal(t, []string{
		"2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08", "2026-01-09",
		"2026-01-12", "2026-01-14", "2026-01-16",
	}, store.shiftDates(1))
}
