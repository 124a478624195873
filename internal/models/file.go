package models

import "time"

// File maps a share code to a message kept in a storage channel.
// ChannelID+MessageID is the storage reference and never changes once written.
type File struct {
	Code         string    `json:"code" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	MimeType     string    `json:"mimeType"`
	FileID       string    `json:"fileId"`
	FileUniqueID string    `json:"fileUniqueId" gorm:"index"`
	MessageID    int       `json:"messageId" gorm:"not null"`
	ChannelID    int64     `json:"channelId" gorm:"not null"`
	UploaderID   int64     `json:"uploaderId" gorm:"index;not null"`
	Downloads    int64     `json:"downloads" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
