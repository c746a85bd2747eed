package postgres

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/keyshopvn/keyshop/internal/pricing"
)

type settingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a loader for the persisted discount tunables
func NewSettingsRepository(db *sqlx.DB) pricing.SettingsLoader {
	return &settingsRepository{db: db}
}

// LoadDiscountSettings reads the single discount settings row. Callers
// fall back to defaults on any error, so failures are just propagated.
func (r *settingsRepository) LoadDiscountSettings() (pricing.Settings, error) {
	query := `
		SELECT referral_buyer_discount, referral_max_discount
		FROM discount_settings
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var row struct {
		ReferralBuyerDiscount int `db:"referral_buyer_discount"`
		ReferralMaxDiscount   int `db:"referral_max_discount"`
	}
	if err := r.db.Get(&row, query); err != nil {
		return pricing.Settings{}, fmt.Errorf("failed to load discount settings: %w", err)
	}

	return pricing.Settings{
		ReferralBuyerDiscount: row.ReferralBuyerDiscount,
		ReferralMaxDiscount:   row.ReferralMaxDiscount,
	}, nil
}
