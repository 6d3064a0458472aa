package models

import "time"

// Like is a directed "interested in" edge. At most one row exists per ordered pair.
type Like struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	FromProfileID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_likes_pair" json:"from_profile_id"`
	ToProfileID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_likes_pair;index" json:"to_profile_id"`
	CreatedAt     time.Time `json:"created_at"`

	From Profile `gorm:"foreignKey:FromProfileID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	To   Profile `gorm:"foreignKey:ToProfileID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
