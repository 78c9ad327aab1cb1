package models

import (
	"time"
)

// ErrorLog keeps operational failures (sink writes, window enumeration) in
// the database so a lost session can be re-entered by hand later.
type ErrorLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	ErrorMsg  string    `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
