package models

import "time"

// Follow is a directed edge: FollowerID follows FollowedID.
type Follow struct {
	FollowerID uint64    `gorm:"primarykey;autoIncrement:false" json:"follower_id"`
	FollowedID uint64    `gorm:"primarykey;autoIncrement:false;index" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followed User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE" json:"-"`
}
