package handler

import (
	"net/http"
	"strconv"

	"github.com/careshift-dev/roster-manager/backend/internal/chat"
	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

const defaultChatMessageLimit = 50

func (h *Handler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	limit := defaultChatMessageLimit
	if param := r.URL.Query().Get("limit"); param != "" {
		n, err := strconv.Atoi(param)
		if err != nil || n <= 0 {
			h.errorResponse(w, r, "消息数量无效")
			return
		}
		limit = n
	}

	messages, err := h.repository.GetMessagesByOrganization(myInfo.OrganizationID, limit)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	attachments, err := h.repository.GetAttachmentsByOrganization(myInfo.OrganizationID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	chat.AssociateAttachments(messages, attachments)

	h.successResponse(w, r, "获取消息列表成功", messages)
}

func (h *Handler) PostChatMessage(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Content       string  `json:"content" validate:"required"`
		AttachmentIDs []int64 `json:"attachmentIDs"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	msg := &domain.ChatMessage{
		OrganizationID: myInfo.OrganizationID,
		SenderID:       myInfo.ID,
		Content:        req.Content,
	}

	if err := h.repository.CreateChatMessage(msg); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 附件必须是本人上传且尚未关联到其他消息的
	if len(req.AttachmentIDs) > 0 {
		if err := h.repository.ClaimAttachments(msg.ID, myInfo.ID, req.AttachmentIDs); err != nil {
			h.errorResponse(w, r, "附件不存在或已被使用")
			return
		}
	}

	h.successResponse(w, r, "发送消息成功", msg)
}

// RegisterAttachment 登记一个已上传文件的元数据，发送消息时再关联。
// 文件内容本身走对象存储，不经过本服务
func (h *Handler) RegisterAttachment(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		FileName    string `json:"fileName" validate:"required"`
		ContentType string `json:"contentType" validate:"required"`
		SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	att := &domain.ChatAttachment{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		UploaderID:  myInfo.ID,
	}

	if err := h.repository.CreateAttachment(att); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "登记附件成功", att)
}
