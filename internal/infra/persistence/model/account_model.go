// Package model holds the gorm persistence models.
package model

import "time"

// AccountModel mirrors the 'students' table. Uniqueness of access_username and
// email is enforced by named constraints created in the migrations.
type AccountModel struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	FullName       string    `gorm:"type:varchar(150);not null"`
	AccessUsername string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_students_access_username"`
	SecretHash     string    `gorm:"type:varchar(255);not null"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_students_email"`
	Note           *string   `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "students"
}
