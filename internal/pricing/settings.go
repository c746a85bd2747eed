package pricing

import (
	"github.com/keyshopvn/keyshop/pkg/logger"
)

// Settings holds the two referral tunables. The value is constructed once
// at startup and injected read-only; there is no hidden shared state.
type Settings struct {
	// ReferralBuyerDiscount is the extra percent granted to a buyer who
	// was referred by someone, applied after the integrated discount.
	ReferralBuyerDiscount int
	// ReferralMaxDiscount caps the referral-count component.
	ReferralMaxDiscount int
}

// Fallback defaults used whenever the settings row cannot be loaded.
const (
	DefaultReferralBuyerDiscount = 1
	DefaultReferralMaxDiscount   = 10
)

// DefaultSettings returns the documented fallback values.
func DefaultSettings() Settings {
	return Settings{
		ReferralBuyerDiscount: DefaultReferralBuyerDiscount,
		ReferralMaxDiscount:   DefaultReferralMaxDiscount,
	}
}

// SettingsLoader fetches the persisted tunables.
type SettingsLoader interface {
	LoadDiscountSettings() (Settings, error)
}

// LoadSettings reads the tunables through the loader, silently replacing
// any load failure with the given defaults. Load errors are logged but
// never surfaced to callers.
func LoadSettings(loader SettingsLoader, defaults Settings) Settings {
	if loader == nil {
		return defaults
	}

	settings, err := loader.LoadDiscountSettings()
	if err != nil {
		logger.Warn("Failed to load discount settings, using defaults",
			logger.Int("referral_buyer_discount", defaults.ReferralBuyerDiscount),
			logger.Int("referral_max_discount", defaults.ReferralMaxDiscount),
			logger.ErrorField(err),
		)
		return defaults
	}

	return settings
}
