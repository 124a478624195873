package models

import "time"

type User struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement:false"` // Telegram user id
	Role     string    `json:"role" gorm:"not null;default:user"`
	Banned   bool      `json:"banned" gorm:"not null;default:false"`
	JoinedAt time.Time `json:"joinedAt" gorm:"autoCreateTime"`
}
