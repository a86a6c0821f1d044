// Package model defines the persisted entities of the portal.
package model

import "time"

// Session is a server-side session record for the database-backed
// session store. Data holds the gob-encoded session values.
type Session struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	Data      []byte    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"index"`
}

// AuditLog records an administrative action against a moderator account.
type AuditLog struct {
	Id         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId     int       `json:"userId"`
	Username   string    `json:"username"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceId int       `json:"resourceId"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"userAgent"`
	Details    string    `json:"details"`
	Timestamp  time.Time `json:"timestamp" gorm:"index"`
}
