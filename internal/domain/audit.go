package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SessionEvent type
type SessionEvent string

const (
	// SessionEventCreated const
	SessionEventCreated SessionEvent = "CREATED"
	// SessionEventTokenCreated const
	SessionEventTokenCreated SessionEvent = "TOKEN_CREATED"
	// SessionEventRefreshed const
	SessionEventRefreshed SessionEvent = "REFRESHED"
	// SessionEventReconnected const
	SessionEventReconnected SessionEvent = "RECONNECTED"
)

// SessionAudit struct - lifecycle record of a conversation session.
// Holds metadata only; tokens and activity content are never stored.
type SessionAudit struct {
	ID             *uuid.UUID   `gorm:"type:uuid;primary_key;"`
	ConversationID string       `gorm:"type:varchar(128);not null;index"`
	Channel        string       `gorm:"type:varchar(32);not null;"`
	Event          SessionEvent `gorm:"type:varchar(16);not null;"`
	ExpiresAt      time.Time    `gorm:"type:timestamp;not null;"`
	CreatedAt      *time.Time   `gorm:"type:timestamp"`
}

// TableName func
func (a *SessionAudit) TableName() string {
	return "session_audits"
}

// BeforeCreate hook - generates UUID before creating
func (a *SessionAudit) BeforeCreate(tx *gorm.DB) (err error) {
	id, err := uuid.NewRandom() // v4
	if err != nil {
		return err
	}
	a.ID = &id
	return nil
}

// MigrateDatabase func - Auto-migrate database schema
func MigrateDatabase(db *gorm.DB) error {
	if db == nil {
		return ErrConfiguration
	}

	if err := db.AutoMigrate(&SessionAudit{}); err != nil {
		return err
	}
	logrus.Info("Session audit schema migrated")
	return nil
}
