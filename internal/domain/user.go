package domain

import (
	"time"
)

// Rank is the loyalty tier of a buyer, derived from cumulative spend.
type Rank string

const (
	RankNewbie   Rank = "newbie"
	RankDong     Rank = "dong"
	RankSat      Rank = "sat"
	RankVang     Rank = "vang"
	RankLucBao   Rank = "luc_bao"
	RankKimCuong Rank = "kim_cuong"
)

// User represents a buyer account.
type User struct {
	ID       string  `json:"id" db:"id"`
	Username string  `json:"username" db:"username"`
	FullName *string `json:"full_name" db:"full_name"`

	// Financial information. Balance is stored in the smallest currency
	// unit and is only ever debited by the remote purchase transaction.
	Balance int64 `json:"balance" db:"balance"`

	// Loyalty and referral state
	Rank          Rank    `json:"rank" db:"rank"`
	ReferralCount int     `json:"referral_count" db:"referral_count"`
	ReferredBy    *string `json:"referred_by" db:"referred_by"`

	IsActive bool `json:"is_active" db:"is_active"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserRepository defines operations for user data access
type UserRepository interface {
	GetByID(id string) (*User, error)
	GetByUsername(username string) (*User, error)
}

// AuthClaims carries the validated identity extracted from an access token.
type AuthClaims struct {
	UserID    string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AuthService validates and issues access tokens. Login and session
// management live outside this service.
type AuthService interface {
	GenerateAccessToken(user *User) (string, error)
	ValidateToken(token string) (*AuthClaims, error)
}

// IsValidRank checks if the rank is one of the known tiers
func IsValidRank(rank Rank) bool {
	switch rank {
	case RankNewbie, RankDong, RankSat, RankVang, RankLucBao, RankKimCuong:
		return true
	}
	return false
}

// WasReferred reports whether the user signed up through a referral link.
func (u *User) WasReferred() bool {
	return u != nil && u.ReferredBy != nil && *u.ReferredBy != ""
}

// HasSufficientBalance checks if user has enough balance for a purchase
func (u *User) HasSufficientBalance(amount int64) bool {
	return u != nil && u.Balance >= amount
}

// DisplayName returns the full name when set, falling back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Username
}
