package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

func msgIDPtr(v int64) *int64 {
	return &v
}

func TestAssociateAttachments(t *testing.T) {
	messages := []*domain.ChatMessage{
		{ID: 1, Content: "今天的排班表已经更新"},
		{ID: 2, Content: "收到"},
	}
	attachments := []*domain.ChatAttachment{
		{ID: 10, MessageID: msgIDPtr(1), FileName: "排班表.pdf"},
		{ID: 11, MessageID: msgIDPtr(1), FileName: "值班须知.docx"},
		{ID: 12, MessageID: nil, FileName: "未发送.png"},
		{ID: 13, MessageID: msgIDPtr(99), FileName: "孤儿附件.png"},
	}

	AssociateAttachments(messages, attachments)

	assert.Len(t, messages[0].Attachments, 2)
	assert.Equal(t, int64(10), messages[0].Attachments[0].ID)
	assert.Equal(t, int64(11), messages[0].Attachments[1].ID)
	// 没有附件的消息得到空切片而不是 nil，序列化后是 [] 而不是 null
	assert.NotNil(t, messages[1].Attachments)
	assert.Empty(t, messages[1].Attachments)
}

func TestAssociateAttachmentsDeduplicates(t *testing.T) {
	messages := []*domain.ChatMessage{{ID: 1}}
	attachments := []*domain.ChatAttachment{
		{ID: 10, MessageID: msgIDPtr(1)},
		{ID: 10, MessageID: msgIDPtr(1)},
		{ID: 10, MessageID: msgIDPtr(1)},
	}

	AssociateAttachments(messages, attachments)

	assert.Len(t, messages[0].Attachments, 1)
}

func TestAssociateAttachmentsNoMessages(t *testing.T) {
	attachments := []*domain.ChatAttachment{
		{ID: 10, MessageID: msgIDPtr(1)},
	}

	// 消息列表为空时不会 panic
	AssociateAttachments(nil, attachments)
}
