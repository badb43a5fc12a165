package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
	"github.com/careshift-dev/roster-manager/backend/internal/roster"
)

func (h *Handler) GetShifts(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	// 默认查询从今天开始的一个生成窗口
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	to := h.materializer.HorizonEnd(now)

	if param := r.URL.Query().Get("from"); param != "" {
		t, err := roster.ParseDate(param)
		if err != nil {
			h.errorResponse(w, r, "开始日期格式无效")
			return
		}
		from = t
	}
	if param := r.URL.Query().Get("to"); param != "" {
		t, err := roster.ParseDate(param)
		if err != nil {
			h.errorResponse(w, r, "结束日期格式无效")
			return
		}
		to = t
	}

	var staffID *int64
	if param := r.URL.Query().Get("staffID"); param != "" {
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "员工ID无效")
			return
		}
		staffID = &id
	}

	shifts, err := h.repository.GetShiftsByOrganization(myInfo.OrganizationID, from, to, staffID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次列表成功", shifts)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.MaterializedShift)
	h.successResponse(w, r, "获取班次成功", shift)
}

// RespondShift 员工对自己的班次进行确认或拒绝，状态只属于班次自身，不影响排班规则
func (h *Handler) RespondShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.MaterializedShift)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	if shift.StaffID != myInfo.ID {
		h.errorResponse(w, r, "只能操作自己的班次")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=accepted declined"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift.Status = domain.ShiftStatus(req.Status)
	if err := h.repository.UpdateShiftStatus(shift); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新班次状态成功", shift)
}
