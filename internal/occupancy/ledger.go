// Package occupancy owns the per-venue live counters. All mutations go
// through the Ledger inside the caller's transaction, so the counter and
// the row that justified the change commit or roll back together.
package occupancy

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Ledger struct {
	log *zap.Logger
}

func NewLedger(log *zap.Logger) *Ledger {
	return &Ledger{log: log.Named("occupancy.ledger")}
}

// IncrementCheckins bumps the venue's live occupancy together with the
// lifetime total and returns both new values. The total only ever goes
// up; check-outs touch the live counter alone. The venue row must exist.
func (l *Ledger) IncrementCheckins(ctx context.Context, tx *gorm.DB, venueID snowflake.ID) (current, total int, err error) {
	var counts struct {
		CurrentCheckins int
		TotalCheckins   int
	}
	counts.CurrentCheckins = -1
	err = tx.WithContext(ctx).Raw(
		`UPDATE venues
		 SET current_checkins = current_checkins + 1, total_checkins = total_checkins + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?
		 RETURNING current_checkins, total_checkins`,
		venueID,
	).Scan(&counts).Error
	if err != nil {
		return 0, 0, err
	}
	if counts.CurrentCheckins < 0 {
		return 0, 0, gorm.ErrRecordNotFound
	}
	return counts.CurrentCheckins, counts.TotalCheckins, nil
}

// DecrementCheckins lowers the venue's live occupancy, never below zero.
// A decrement against an already-zero counter is an anomaly: the check-in
// row said someone was present but the counter disagreed. It is logged
// and the counter stays at zero.
func (l *Ledger) DecrementCheckins(ctx context.Context, tx *gorm.DB, venueID snowflake.ID) (int, error) {
	count := -1
	err := tx.WithContext(ctx).Raw(
		`UPDATE venues
		 SET current_checkins = current_checkins - 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND current_checkins > 0
		 RETURNING current_checkins`,
		venueID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	if count < 0 {
		l.log.Warn("occupancy decrement on zero counter",
			zap.String("venue_id", venueID.String()),
		)
		return 0, nil
	}
	return count, nil
}

// IncrementPhotoCount bumps the venue's photo counter and returns the new
// value.
func (l *Ledger) IncrementPhotoCount(ctx context.Context, tx *gorm.DB, venueID snowflake.ID) (int, error) {
	count := -1
	err := tx.WithContext(ctx).Raw(
		`UPDATE venues
		 SET photo_count = photo_count + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?
		 RETURNING photo_count`,
		venueID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return count, nil
}
