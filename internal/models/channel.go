package models

// ChannelBinding points a user's uploads at their own storage channel.
// At most one binding per user; re-linking overwrites.
type ChannelBinding struct {
	UserID    int64  `json:"userId" gorm:"primaryKey;autoIncrement:false"`
	ChannelID int64  `json:"channelId" gorm:"not null"`
	Title     string `json:"title"`
}
