// Package preference models per-user recommendation preferences.
package preference

import (
	"github.com/google/uuid"

	"github.com/neighbourhood/backend/internal/domain/atm"
	"github.com/neighbourhood/backend/internal/domain/shared"
)

// AnyBank is the sentinel meaning no bank restriction
const AnyBank = "Any"

// TransactionType classifies what the user intends to do at a machine
type TransactionType string

const (
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionDeposit    TransactionType = "deposit"
	TransactionBoth       TransactionType = "both"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionWithdrawal, TransactionDeposit, TransactionBoth:
		return true
	}
	return false
}

// BankSet is a typed set of preferred bank codes. It may contain the
// AnyBank sentinel. Serialization to the store's text column happens at
// the persistence boundary only.
type BankSet []string

// Matches reports whether the set admits the given bank
func (s BankSet) Matches(bank atm.Bank) bool {
	for _, b := range s {
		if b == AnyBank || b == bank.String() {
			return true
		}
	}
	return false
}

// TransactionTypes is a typed set of intended transaction types
type TransactionTypes []TransactionType

// RequiresDeposit reports whether the user needs deposit capability
func (s TransactionTypes) RequiresDeposit() bool {
	for _, t := range s {
		if t == TransactionDeposit || t == TransactionBoth {
			return true
		}
	}
	return false
}

// Matches reports whether a machine can serve the intended transactions.
// Withdrawals are universally supported; only deposits restrict.
func (s TransactionTypes) Matches(candidate *atm.ATM) bool {
	if s.RequiresDeposit() {
		return candidate.DepositAvailable
	}
	return true
}

// Preferences is the per-user preference aggregate, owned 1:1 by a user
// identity. Absence is a valid state: callers fall back to Default.
type Preferences struct {
	shared.BaseEntity
	UserID            uuid.UUID
	PreferredBanks    BankSet
	TransactionTypes  TransactionTypes
	MaxRadiusKm       int
	PreferredCurrency string
}

// Default returns the permissive preference set used when a user has
// never saved any.
func Default(userID uuid.UUID) *Preferences {
	return &Preferences{
		BaseEntity:        shared.NewBaseEntity(),
		UserID:            userID,
		PreferredBanks:    BankSet{AnyBank},
		TransactionTypes:  TransactionTypes{TransactionBoth},
		MaxRadiusKm:       10,
		PreferredCurrency: "JMD",
	}
}

// Normalize fills zero-valued fields with their defaults so stored
// preferences are always usable by the filter and scorer.
func (p *Preferences) Normalize() {
	if len(p.PreferredBanks) == 0 {
		p.PreferredBanks = BankSet{AnyBank}
	}
	if len(p.TransactionTypes) == 0 {
		p.TransactionTypes = TransactionTypes{TransactionBoth}
	}
	if p.MaxRadiusKm <= 0 {
		p.MaxRadiusKm = 10
	}
	if p.PreferredCurrency == "" {
		p.PreferredCurrency = "JMD"
	}
}
