package models

import "time"

type Like struct {
	UserID    uint64    `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	MessageID uint64    `gorm:"primarykey;autoIncrement:false;index" json:"message_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Message Message `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}
