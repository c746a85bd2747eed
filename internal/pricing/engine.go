package pricing

import (
	"math"

	"github.com/keyshopvn/keyshop/internal/domain"
)

// accumulatedCap bounds the rank + referral-count component. The variant
// discount deliberately stacks on top of this uncapped; only the
// personalization part is limited.
const accumulatedCap = 10

// Breakdown itemizes every component of a computed discount.
type Breakdown struct {
	VariantDiscount       int
	RankDiscount          int
	ReferralCountDiscount int
	AccumulatedDiscount   int
	IntegratedPercent     int
	BuyerPercent          int
	CappedAt10            bool
}

// ComputePercent derives the discount breakdown for a (user, variant)
// pair. A nil user is a guest: only the variant discount applies.
func ComputePercent(user *domain.User, variant *domain.ProductVariant, settings Settings) Breakdown {
	b := Breakdown{}
	if variant != nil {
		b.VariantDiscount = variant.DiscountPercent
	}

	if user != nil {
		b.RankDiscount = RankDiscount(user.Rank)

		referral := user.ReferralCount
		if referral < 0 {
			referral = 0
		}
		if referral > settings.ReferralMaxDiscount {
			referral = settings.ReferralMaxDiscount
		}
		b.ReferralCountDiscount = referral

		accumulated := b.RankDiscount + b.ReferralCountDiscount
		if accumulated > accumulatedCap {
			accumulated = accumulatedCap
			b.CappedAt10 = true
		}
		b.AccumulatedDiscount = accumulated

		if user.WasReferred() {
			b.BuyerPercent = settings.ReferralBuyerDiscount
		}
	}

	b.IntegratedPercent = b.VariantDiscount + b.AccumulatedDiscount
	return b
}

// UnitPrice computes the final charged price per unit. Two sequential
// rounding stages, both half away from zero:
//
//	afterIntegrated = round(price * (100 - integratedPercent) / 100)
//	final           = round(afterIntegrated * (100 - buyerPercent) / 100)
//
// Factors clamp at 0 if a percent ever exceeds 100, so the result is
// never negative.
func UnitPrice(user *domain.User, variant *domain.ProductVariant, settings Settings) int64 {
	if variant == nil {
		return 0
	}

	b := ComputePercent(user, variant, settings)
	afterIntegrated := applyPercent(variant.Price, b.IntegratedPercent)
	return applyPercent(afterIntegrated, b.BuyerPercent)
}

func applyPercent(price int64, percent int) int64 {
	factor := 100 - percent
	if factor < 0 {
		factor = 0
	}
	return int64(math.Round(float64(price) * float64(factor) / 100))
}
