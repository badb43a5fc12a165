package chat

import "github.com/careshift-dev/roster-manager/backend/internal/domain"

// AssociateAttachments 把单独查出来的附件挂到对应的消息上。
// 消息和附件是两次独立查询的结果，同一个附件可能在结果里出现多次，按 id 去重。
// 没有关联到任何消息的附件（上传了但消息还没发出去）会被忽略。
func AssociateAttachments(messages []*domain.ChatMessage, attachments []*domain.ChatAttachment) {
	messagesByID := make(map[int64]*domain.ChatMessage, len(messages))
	for _, msg := range messages {
		if msg.Attachments == nil {
			msg.Attachments = make([]domain.ChatAttachment, 0)
		}
		messagesByID[msg.ID] = msg
	}

	seen := make(map[int64]bool, len(attachments))

	for _, att := range attachments {
		if att.MessageID == nil {
			continue
		}
		if seen[att.ID] {
			continue
		}

		msg, exists := messagesByID[*att.MessageID]
		if !exists {
			continue
		}

		seen[att.ID] = true
		msg.Attachments = append(msg.Attachments, *att)
	}
}
