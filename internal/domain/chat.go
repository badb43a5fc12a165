package domain

import "time"

type ChatMessage struct {
	ID             int64            `json:"id"`
	OrganizationID int64            `json:"organizationID"`
	SenderID       int64            `json:"senderID"`
	Content        string           `json:"content"`
	CreatedAt      time.Time        `json:"createdAt"`
	Version        int32            `json:"-"`

	SenderName  string           `json:"senderName,omitempty"`
	Attachments []ChatAttachment `json:"attachments"`
}

// ChatAttachment 只记录文件元数据，文件内容由对象存储负责。
// MessageID 在文件上传后、消息发送前为 nil，消息发送时再关联。
type ChatAttachment struct {
	ID          int64     `json:"id"`
	MessageID   *int64    `json:"messageID"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploaderID  int64     `json:"uploaderID"`
	CreatedAt   time.Time `json:"createdAt"`
}
