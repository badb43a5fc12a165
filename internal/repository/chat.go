package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

func (r *Repository) CreateChatMessage(msg *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (organization_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{msg.OrganizationID, msg.SenderID, msg.Content}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&msg.ID, &msg.CreatedAt, &msg.Version); err != nil {
		return err
	}

	return nil
}

// GetMessagesByOrganization 返回机构最近的 limit 条消息，时间升序，不带附件。
// 附件由单独的查询取回后在内存中关联。
func (r *Repository) GetMessagesByOrganization(organizationID int64, limit int) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, sender_id, content, created_at, version, full_name
		FROM (
			SELECT m.id, m.sender_id, m.content, m.created_at, m.version, u.full_name
			FROM chat_messages m
			JOIN users u ON m.sender_id = u.id
			WHERE m.organization_id = $1
			ORDER BY m.id DESC
			LIMIT $2
		) latest
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, organizationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*domain.ChatMessage, 0)
	for rows.Next() {
		msg := &domain.ChatMessage{
			OrganizationID: organizationID,
			Attachments:    make([]domain.ChatAttachment, 0),
		}
		dst := []any{&msg.ID, &msg.SenderID, &msg.Content, &msg.CreatedAt, &msg.Version, &msg.SenderName}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *Repository) CreateAttachment(att *domain.ChatAttachment) error {
	query := `
		INSERT INTO chat_attachments (file_name, content_type, size_bytes, uploader_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{att.FileName, att.ContentType, att.SizeBytes, att.UploaderID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&att.ID, &att.CreatedAt); err != nil {
		return err
	}

	return nil
}

// ClaimAttachments 把一批还没关联消息的附件关联到某条消息上。
// 只能认领自己上传且尚未被认领的附件，无效的 id 会被直接跳过。
func (r *Repository) ClaimAttachments(messageID int64, uploaderID int64, attachmentIDs []int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE chat_attachments
		SET message_id = $1
		WHERE id = $2 AND uploader_id = $3 AND message_id IS NULL
	`

	for _, attID := range attachmentIDs {
		if _, err := tx.ExecContext(ctx, query, messageID, attID, uploaderID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// GetAttachmentsByOrganization 返回机构消息关联的所有附件元数据
func (r *Repository) GetAttachmentsByOrganization(organizationID int64) ([]*domain.ChatAttachment, error) {
	query := `
		SELECT a.id, a.message_id, a.file_name, a.content_type, a.size_bytes, a.uploader_id, a.created_at
		FROM chat_attachments a
		JOIN chat_messages m ON a.message_id = m.id
		WHERE m.organization_id = $1
		ORDER BY a.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := make([]*domain.ChatAttachment, 0)
	for rows.Next() {
		att := &domain.ChatAttachment{}
		var messageID sql.NullInt64
		dst := []any{&att.ID, &messageID, &att.FileName, &att.ContentType, &att.SizeBytes, &att.UploaderID, &att.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if messageID.Valid {
			att.MessageID = &messageID.Int64
		}
		attachments = append(attachments, att)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return attachments, nil
}
