package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keyshopvn/keyshop/internal/domain"
)

func strPtr(s string) *string { return &s }

func buyer(rank domain.Rank, referralCount int, referred bool) *domain.User {
	u := &domain.User{
		ID:            "u-1",
		Username:      "buyer",
		Rank:          rank,
		ReferralCount: referralCount,
		IsActive:      true,
	}
	if referred {
		u.ReferredBy = strPtr("u-0")
	}
	return u
}

func variant(price int64, discount int) *domain.ProductVariant {
	return &domain.ProductVariant{
		ID:              "v-1",
		Price:           price,
		DiscountPercent: discount,
	}
}

func TestRankDiscountTable(t *testing.T) {
	cases := map[domain.Rank]int{
		domain.RankNewbie:   0,
		domain.RankDong:     1,
		domain.RankSat:      2,
		domain.RankVang:     3,
		domain.RankLucBao:   4,
		domain.RankKimCuong: 5,
	}
	for rank, want := range cases {
		assert.Equal(t, want, RankDiscount(rank), "rank %s", rank)
	}

	// Unknown ranks carry no discount.
	assert.Equal(t, 0, RankDiscount(domain.Rank("platinum")))
}

func TestComputePercentGuest(t *testing.T) {
	b := ComputePercent(nil, variant(50000, 10), DefaultSettings())

	assert.Equal(t, 10, b.VariantDiscount)
	assert.Equal(t, 0, b.AccumulatedDiscount)
	assert.Equal(t, 10, b.IntegratedPercent)
	assert.Equal(t, 0, b.BuyerPercent)
	assert.False(t, b.CappedAt10)
}

func TestComputePercentReferralCountCapped(t *testing.T) {
	b := ComputePercent(buyer(domain.RankNewbie, 25, false), variant(10000, 0), DefaultSettings())

	assert.Equal(t, 10, b.ReferralCountDiscount)
	assert.Equal(t, 10, b.AccumulatedDiscount)
	assert.False(t, b.CappedAt10, "reaching the cap exactly is not capping")
}

func TestComputePercentAccumulatedCap(t *testing.T) {
	// kim_cuong (5) + 8 referrals = 13, capped at 10.
	b := ComputePercent(buyer(domain.RankKimCuong, 8, false), variant(10000, 0), DefaultSettings())

	assert.Equal(t, 5, b.RankDiscount)
	assert.Equal(t, 8, b.ReferralCountDiscount)
	assert.Equal(t, 10, b.AccumulatedDiscount)
	assert.True(t, b.CappedAt10)
}

func TestComputePercentIntegratedUncapped(t *testing.T) {
	// Variant 15% stacks on the capped 10% without any further cap.
	b := ComputePercent(buyer(domain.RankKimCuong, 10, false), variant(10000, 15), DefaultSettings())

	assert.Equal(t, 10, b.AccumulatedDiscount)
	assert.Equal(t, 25, b.IntegratedPercent)
}

func TestComputePercentBuyerDiscountOnlyWhenReferred(t *testing.T) {
	b := ComputePercent(buyer(domain.RankDong, 0, true), variant(10000, 0), DefaultSettings())
	assert.Equal(t, 1, b.BuyerPercent)

	b = ComputePercent(buyer(domain.RankDong, 0, false), variant(10000, 0), DefaultSettings())
	assert.Equal(t, 0, b.BuyerPercent)
}

func TestUnitPriceTwoStageRounding(t *testing.T) {
	// 100000 at 25% integrated -> 75000, then 1% buyer -> 74250.
	u := buyer(domain.RankKimCuong, 10, true)
	v := variant(100000, 15)

	assert.Equal(t, int64(74250), UnitPrice(u, v, DefaultSettings()))
}

func TestUnitPriceGuest(t *testing.T) {
	assert.Equal(t, int64(45000), UnitPrice(nil, variant(50000, 10), DefaultSettings()))
}

func TestUnitPriceRoundsHalfAwayFromZero(t *testing.T) {
	// 999 at 5% -> 949.05 -> 949; 999 at 15% -> 849.15 -> 849;
	// 1250 at 1% -> 1237.5 -> 1238.
	assert.Equal(t, int64(949), UnitPrice(nil, variant(999, 5), DefaultSettings()))
	assert.Equal(t, int64(849), UnitPrice(nil, variant(999, 15), DefaultSettings()))
	assert.Equal(t, int64(1238), UnitPrice(nil, variant(1250, 1), DefaultSettings()))
}

func TestUnitPriceNeverNegative(t *testing.T) {
	assert.Equal(t, int64(0), UnitPrice(nil, variant(10000, 120), DefaultSettings()))
}

func TestUnitPriceNilVariant(t *testing.T) {
	assert.Equal(t, int64(0), UnitPrice(nil, nil, DefaultSettings()))
}

func TestComputePercentSettingsOverride(t *testing.T) {
	settings := Settings{ReferralBuyerDiscount: 3, ReferralMaxDiscount: 5}
	b := ComputePercent(buyer(domain.RankNewbie, 9, true), variant(10000, 0), settings)

	assert.Equal(t, 5, b.ReferralCountDiscount)
	assert.Equal(t, 3, b.BuyerPercent)
}
