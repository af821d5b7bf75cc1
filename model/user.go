package model

import (
	"time"

	"gorm.io/gorm"
)

// User stores the admin account along with its two-factor security record.
// TwoFactorSecret may be populated while TwoFactorEnabled is still false: that is
// the pending-verification window between setup and the first successful code.
type User struct {
	ID                   uint   `gorm:"primarykey"`
	FullName             string `gorm:"size:64;not null"`
	Email                string `gorm:"uniqueIndex;size:256;not null"`
	Password             string `gorm:"size:64;not null"`
	TwoFactorSecret      string `gorm:"size:128;not null;default:''"`
	TwoFactorEnabled     bool   `gorm:"default:false;not null"`
	TwoFactorBackupCodes string `gorm:"size:512;not null;default:''"` // JSON array of unused codes
	CreatedAt            time.Time
	UpdatedAt            time.Time
	DeletedAt            gorm.DeletedAt `gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == 0 {
		u.ID = GenerateID()
	}
	return nil
}
