package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
	"github.com/careshift-dev/roster-manager/backend/internal/roster"
	"github.com/careshift-dev/roster-manager/backend/internal/utils"
)

// checkDefinitionConflicts 拉取员工所有启用中的规则并执行冲突检测。
// 检测无法完成时必须返回错误，绝不能当成没有冲突放行
func (h *Handler) checkDefinitionConflicts(cand roster.Candidate) ([]domain.ConflictReport, error) {
	existing, err := h.repository.GetActiveDefinitionsByStaff(cand.StaffID)
	if err != nil {
		return nil, err
	}

	return roster.DetectConflicts(cand, existing)
}

// CheckConflicts 供表单在输入变化时预检冲突，提交前的最终校验在创建/更新里会再做一次
func (h *Handler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		StaffID             int64   `json:"staffID" validate:"required"`
		ShiftType           string  `json:"shiftType" validate:"required,oneof=morning afternoon night"`
		StartDate           string  `json:"startDate" validate:"required"`
		EndDate             *string `json:"endDate"`
		Weekdays            []int32 `json:"weekdays" validate:"required,dive,gte=0,lte=6"`
		ExcludeDefinitionID *int64  `json:"excludeDefinitionID"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	staff, err := h.repository.GetUserByID(req.StaffID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if staff.OrganizationID != myInfo.OrganizationID {
		h.errorResponse(w, r, "员工不存在")
		return
	}

	reports, err := h.checkDefinitionConflicts(roster.Candidate{
		StaffID:             req.StaffID,
		ShiftType:           domain.ShiftType(req.ShiftType),
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		Weekdays:            req.Weekdays,
		ExcludeDefinitionID: req.ExcludeDefinitionID,
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "冲突检测完成", reports)
}

func (h *Handler) CreateDefinition(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		StaffID      int64   `json:"staffID" validate:"required"`
		FacilityID   int64   `json:"facilityID" validate:"required"`
		SectorID     *int64  `json:"sectorID"`
		ShiftType    string  `json:"shiftType" validate:"required,oneof=morning afternoon night"`
		Weekdays     []int32 `json:"weekdays" validate:"required,dive,gte=0,lte=6"`
		DurationType string  `json:"durationType" validate:"required,oneof=permanent temporary"`
		StartDate    string  `json:"startDate" validate:"required"`
		EndDate      *string `json:"endDate"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateWeekdays(req.Weekdays); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateDefinitionDates(domain.DurationType(req.DurationType), req.StartDate, req.EndDate); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 员工和科室都必须在操作者所在的机构内
	staff, err := h.repository.GetUserByID(req.StaffID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if staff.OrganizationID != myInfo.OrganizationID {
		h.errorResponse(w, r, "员工不存在")
		return
	}

	facility, err := h.repository.GetFacilityByID(req.FacilityID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "科室不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if facility.OrganizationID != myInfo.OrganizationID {
		h.errorResponse(w, r, "科室不存在")
		return
	}

	// 提交前的最终冲突检测，存在冲突时阻止保存
	reports, err := h.checkDefinitionConflicts(roster.Candidate{
		StaffID:   req.StaffID,
		ShiftType: domain.ShiftType(req.ShiftType),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Weekdays:  req.Weekdays,
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(reports) > 0 {
		h.errorResponseWithData(w, r, "排班时间存在冲突", reports)
		return
	}

	def := &domain.RecurringScheduleDefinition{
		StaffID:        req.StaffID,
		OrganizationID: myInfo.OrganizationID,
		FacilityID:     req.FacilityID,
		SectorID:       req.SectorID,
		ShiftType:      domain.ShiftType(req.ShiftType),
		Weekdays:       req.Weekdays,
		DurationType:   domain.DurationType(req.DurationType),
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Active:         true,
	}

	if err := h.repository.CreateDefinition(def); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "recurring_definitions_sector_id_fkey":
				h.errorResponse(w, r, "分区不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 规则已落库，接着生成具体班次。这一步失败不回滚规则，
	// 生成是幂等的，可以通过重新生成接口手动重试
	count, err := h.materializer.Generate(def, time.Now())
	if err != nil {
		h.logInternalServerError(r, err)
		h.errorResponseWithData(w, r, "排班规则已保存，但生成班次失败，请重新生成", def)
		return
	}

	h.successResponse(w, r, fmt.Sprintf("创建排班规则成功，已生成 %d 个班次", count), map[string]any{
		"definition":     def,
		"generatedCount": count,
	})
}

func (h *Handler) GetAllDefinitions(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var staffID, facilityID *int64
	if param := r.URL.Query().Get("staffID"); param != "" {
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "员工ID无效")
			return
		}
		staffID = &id
	}
	if param := r.URL.Query().Get("facilityID"); param != "" {
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "科室ID无效")
			return
		}
		facilityID = &id
	}

	defs, err := h.repository.GetAllDefinitionsByOrganization(myInfo.OrganizationID, staffID, facilityID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班规则列表成功", defs)
}

func (h *Handler) GetDefinition(w http.ResponseWriter, r *http.Request) {
	def := r.Context().Value(DefinitionCtx).(*domain.RecurringScheduleDefinition)
	h.successResponse(w, r, "获取排班规则成功", def)
}

func (h *Handler) UpdateDefinition(w http.ResponseWriter, r *http.Request) {
	def := r.Context().Value(DefinitionCtx).(*domain.RecurringScheduleDefinition)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		FacilityID   *int64  `json:"facilityID"`
		SectorID     *int64  `json:"sectorID"`
		ShiftType    *string `json:"shiftType" validate:"omitempty,oneof=morning afternoon night"`
		Weekdays     []int32 `json:"weekdays" validate:"omitempty,dive,gte=0,lte=6"`
		DurationType *string `json:"durationType" validate:"omitempty,oneof=permanent temporary"`
		StartDate    *string `json:"startDate"`
		EndDate      *string `json:"endDate"`
		Active       *bool   `json:"active"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.FacilityID != nil {
		facility, err := h.repository.GetFacilityByID(*req.FacilityID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "科室不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		if facility.OrganizationID != myInfo.OrganizationID {
			h.errorResponse(w, r, "科室不存在")
			return
		}
		def.FacilityID = *req.FacilityID
	}
	if req.SectorID != nil {
		def.SectorID = req.SectorID
	}
	if req.ShiftType != nil {
		def.ShiftType = domain.ShiftType(*req.ShiftType)
	}
	if req.Weekdays != nil {
		def.Weekdays = req.Weekdays
	}
	if req.DurationType != nil {
		def.DurationType = domain.DurationType(*req.DurationType)
	}
	if req.StartDate != nil {
		def.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		def.EndDate = req.EndDate
	}
	if req.DurationType != nil && domain.DurationType(*req.DurationType) == domain.DurationTypePermanent {
		// 改成永久规则时清掉结束日期
		def.EndDate = nil
	}
	if req.Active != nil {
		def.Active = *req.Active
	}

	if err := utils.ValidateWeekdays(def.Weekdays); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateDefinitionDates(def.DurationType, def.StartDate, def.EndDate); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 编辑时要把自己排除掉，否则永远和自己冲突
	if def.Active {
		reports, err := h.checkDefinitionConflicts(roster.Candidate{
			StaffID:             def.StaffID,
			ShiftType:           def.ShiftType,
			StartDate:           def.StartDate,
			EndDate:             def.EndDate,
			Weekdays:            def.Weekdays,
			ExcludeDefinitionID: &def.ID,
		})
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if len(reports) > 0 {
			h.errorResponseWithData(w, r, "排班时间存在冲突", reports)
			return
		}
	}

	if err := h.repository.UpdateDefinition(def); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 规则更新后重建未来窗口内的班次：先删后生成，历史班次不动
	now := time.Now()
	if err := h.materializer.DeleteFutureShifts(def.ID, now); err != nil {
		h.logInternalServerError(r, err)
		h.errorResponseWithData(w, r, "排班规则已更新，但重建班次失败，请重新生成", def)
		return
	}

	count := 0
	if def.Active {
		generated, err := h.materializer.Generate(def, now)
		if err != nil {
			h.logInternalServerError(r, err)
			h.errorResponseWithData(w, r, "排班规则已更新，但生成班次失败，请重新生成", def)
			return
		}
		count = generated
	}

	h.successResponse(w, r, fmt.Sprintf("更新排班规则成功，已生成 %d 个班次", count), map[string]any{
		"definition":     def,
		"generatedCount": count,
	})
}

func (h *Handler) DeleteDefinition(w http.ResponseWriter, r *http.Request) {
	def := r.Context().Value(DefinitionCtx).(*domain.RecurringScheduleDefinition)

	// 先清理未来的班次，再删除规则，历史班次保留
	if err := h.materializer.DeleteFutureShifts(def.ID, time.Now()); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.DeleteDefinition(def.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除排班规则成功", nil)
}

// GenerateDefinitionShifts 手动触发补生成，用于生成失败后的重试。
// 生成是幂等的，重复调用不会产生重复班次
func (h *Handler) GenerateDefinitionShifts(w http.ResponseWriter, r *http.Request) {
	def := r.Context().Value(DefinitionCtx).(*domain.RecurringScheduleDefinition)

	if !def.Active {
		h.errorResponse(w, r, "规则已停用，无法生成班次")
		return
	}

	count, err := h.materializer.Generate(def, time.Now())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, fmt.Sprintf("生成完成，新增 %d 个班次", count), map[string]any{
		"generatedCount": count,
	})
}
