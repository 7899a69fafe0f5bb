package postgres

import (
	"context"
	"errors"

	"directline-bridge/internal/domain"
	"directline-bridge/internal/ports/output"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Compile-time check to ensure AuditRepository implements the output port
var _ output.AuditRepository = (*AuditRepository)(nil)

// AuditRepository struct - Secondary/Driven adapter for PostgreSQL
type AuditRepository struct {
	dbGorm *gorm.DB
}

// NewAuditRepository func - Creates new PostgreSQL repository and migrates its schema
func NewAuditRepository(dbGorm *gorm.DB) (*AuditRepository, error) {
	logrus.Info("Migrate database ...")
	if err := domain.MigrateDatabase(dbGorm); err != nil {
		return nil, err
	}
	return &AuditRepository{
		dbGorm: dbGorm,
	}, nil
}

// RecordSessionEvent func - Stores one lifecycle event. Never stores the token.
func (p *AuditRepository) RecordSessionEvent(ctx context.Context, channel string, event domain.SessionEvent, session domain.ConversationSession) error {
	if session.ConversationID == "" {
		return errors.New("session audit requires a conversation id")
	}

	audit := domain.SessionAudit{
		ConversationID: session.ConversationID,
		Channel:        channel,
		Event:          event,
		ExpiresAt:      session.ExpiresAt,
	}
	if err := p.dbGorm.WithContext(ctx).Create(&audit).Error; err != nil {
		logrus.Errorln(err)
		return err
	}
	return nil
}

// ListSessionEvents func - Returns the events of a conversation, oldest first
func (p *AuditRepository) ListSessionEvents(ctx context.Context, conversationID string) ([]domain.SessionAudit, error) {
	var audits []domain.SessionAudit
	err := p.dbGorm.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&audits).Error
	if err != nil {
		logrus.Errorln(err)
		return nil, err
	}
	return audits, nil
}
