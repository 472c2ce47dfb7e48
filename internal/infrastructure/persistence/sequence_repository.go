package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/docflow/internal/domain/document"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequencer implements the Sequencer interface on a counter table.
// Each (kind, period, series) scope owns a row that is locked while the
// next number is handed out, so concurrent creations never share a code.
type GormSequencer struct {
	db *gorm.DB
}

// NewGormSequencer creates a new GormSequencer
func NewGormSequencer(db *gorm.DB) *GormSequencer {
	return &GormSequencer{db: db}
}

// NextCode hands out the next number and code of a sequence
func (s *GormSequencer) NextCode(ctx context.Context, kind document.DocumentKind, periodID uuid.UUID, series string) (int, string, error) {
	var number int
	err := conn(ctx, s.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq documentSequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("kind = ? AND period_id = ? AND series = ?", kind, periodID, series).
			First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = documentSequence{
				ID:         uuid.New(),
				Kind:       kind.String(),
				PeriodID:   periodID,
				Series:     series,
				NextNumber: 1,
				CreatedAt:  time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		number = seq.NextNumber
		seq.NextNumber++
		seq.UpdatedAt = time.Now()
		return tx.Save(&seq).Error
	})
	if err != nil {
		return 0, "", err
	}
	return number, document.ComposeCode(kind, series, number), nil
}
