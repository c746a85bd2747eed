package pricing

import (
	"github.com/keyshopvn/keyshop/internal/domain"
)

// rankDiscounts is the fixed loyalty table. Tiers map to a flat percent
// off the accumulated discount; anything unrecognized earns nothing.
var rankDiscounts = map[domain.Rank]int{
	domain.RankNewbie:   0,
	domain.RankDong:     1,
	domain.RankSat:      2,
	domain.RankVang:     3,
	domain.RankLucBao:   4,
	domain.RankKimCuong: 5,
}

// RankDiscount returns the discount percent for a loyalty rank.
func RankDiscount(rank domain.Rank) int {
	return rankDiscounts[rank]
}
