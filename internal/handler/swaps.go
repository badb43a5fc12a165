package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

func (h *Handler) CreateSwapRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		ShiftID  int64  `json:"shiftID" validate:"required"`
		TargetID int64  `json:"targetID" validate:"required"`
		Reason   string `json:"reason" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := h.repository.GetShiftByID(req.ShiftID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "班次不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if shift.OrganizationID != myInfo.OrganizationID {
		h.errorResponse(w, r, "班次不存在")
		return
	}
	// 只能申请换出自己的班次
	if shift.StaffID != myInfo.ID {
		h.errorResponse(w, r, "只能申请换出自己的班次")
		return
	}
	// 已经开始的班次不能再换
	if !shift.StartTime.After(time.Now()) {
		h.errorResponse(w, r, "班次已开始，无法申请换班")
		return
	}

	if req.TargetID == myInfo.ID {
		h.errorResponse(w, r, "不能把班次换给自己")
		return
	}

	target, err := h.repository.GetUserByID(req.TargetID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "目标员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if target.OrganizationID != myInfo.OrganizationID {
		h.errorResponse(w, r, "目标员工不存在")
		return
	}

	swap := &domain.SwapRequest{
		ShiftID:     req.ShiftID,
		RequesterID: myInfo.ID,
		TargetID:    req.TargetID,
		Reason:      req.Reason,
		Status:      domain.SwapStatusPending,
	}

	if err := h.repository.CreateSwapRequest(swap); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 通知目标员工有新的换班申请
	mailMessage := domain.MailMessage{
		Type: "swap_request",
		To:   target.Email,
		Data: domain.SwapRequestMailData{
			TargetName:    target.FullName,
			RequesterName: myInfo.FullName,
			ShiftStart:    shift.StartTime.Format("2006-01-02 15:04"),
			ShiftEnd:      shift.EndTime.Format("2006-01-02 15:04"),
			Reason:        req.Reason,
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		// 申请已经创建成功，通知失败只记录日志
		h.logInternalServerError(r, err)
	}

	h.successResponse(w, r, "创建换班申请成功", swap)
}

func (h *Handler) GetMySwapRequests(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	swaps, err := h.repository.GetSwapRequestsByUser(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取换班申请列表成功", swaps)
}

func (h *Handler) GetAllSwapRequests(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	swaps, err := h.repository.GetAllSwapRequestsByOrganization(myInfo.OrganizationID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取换班申请列表成功", swaps)
}

// ApproveSwapRequest 目标员工本人或排班管理员可以批准，批准后班次改派给目标员工
func (h *Handler) ApproveSwapRequest(w http.ResponseWriter, r *http.Request) {
	swap := r.Context().Value(SwapRequestCtx).(*domain.SwapRequest)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	isManager := myInfo.Role == domain.RoleRosterManager || myInfo.Role == domain.RoleAdmin
	if myInfo.ID != swap.TargetID && !isManager {
		h.errorResponse(w, r, "无权批准该换班申请")
		return
	}

	if swap.Status != domain.SwapStatusPending {
		h.errorResponse(w, r, "该换班申请已处理")
		return
	}

	shift, err := h.repository.GetShiftByID(swap.ShiftID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "班次不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	// 班次在申请之后可能已经被改派或开始
	if shift.StaffID != swap.RequesterID {
		h.errorResponse(w, r, "班次已被改派，无法批准")
		return
	}
	if !shift.StartTime.After(time.Now()) {
		h.errorResponse(w, r, "班次已开始，无法批准")
		return
	}

	if err := h.repository.ReassignShift(shift, swap.TargetID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	swap.Status = domain.SwapStatusApproved
	if err := h.repository.UpdateSwapRequestStatus(swap); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "批准换班申请成功", swap)
}

func (h *Handler) DeclineSwapRequest(w http.ResponseWriter, r *http.Request) {
	swap := r.Context().Value(SwapRequestCtx).(*domain.SwapRequest)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	isManager := myInfo.Role == domain.RoleRosterManager || myInfo.Role == domain.RoleAdmin
	if myInfo.ID != swap.TargetID && myInfo.ID != swap.RequesterID && !isManager {
		h.errorResponse(w, r, "无权拒绝该换班申请")
		return
	}

	if swap.Status != domain.SwapStatusPending {
		h.errorResponse(w, r, "该换班申请已处理")
		return
	}

	swap.Status = domain.SwapStatusDeclined
	if err := h.repository.UpdateSwapRequestStatus(swap); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "拒绝换班申请成功", swap)
}
