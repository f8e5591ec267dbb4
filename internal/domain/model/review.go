package model

import "time"

// レビュー。(user_id, product_id) で1件。
// 2回目の投稿は上書き（重複行は作らない）。DB側のunique制約で同時投稿にも耐える。
type Review struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_review_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;index;uniqueIndex:idx_review_user_product" json:"product_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
