package preference

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/neighbourhood/backend/internal/domain/atm"
)

func TestBankSetMatches(t *testing.T) {
	t.Run("any admits every bank", func(t *testing.T) {
		s := BankSet{AnyBank}
		assert.True(t, s.Matches(atm.BankNCB))
		assert.True(t, s.Matches(atm.BankUnknown))
	})

	t.Run("explicit set", func(t *testing.T) {
		s := BankSet{"NCB", "BNS"}
		assert.True(t, s.Matches(atm.BankNCB))
		assert.False(t, s.Matches(atm.BankJMMB))
	})

	t.Run("empty set admits nothing", func(t *testing.T) {
		assert.False(t, BankSet{}.Matches(atm.BankNCB))
	})
}

func TestTransactionTypesMatches(t *testing.T) {
	depositCapable := &atm.ATM{DepositAvailable: true}
	withdrawalOnly := &atm.ATM{DepositAvailable: false}

	t.Run("withdrawal only never restricts", func(t *testing.T) {
		s := TransactionTypes{TransactionWithdrawal}
		assert.False(t, s.RequiresDeposit())
		assert.True(t, s.Matches(withdrawalOnly))
	})

	t.Run("deposit requires capability", func(t *testing.T) {
		s := TransactionTypes{TransactionDeposit}
		assert.True(t, s.RequiresDeposit())
		assert.True(t, s.Matches(depositCapable))
		assert.False(t, s.Matches(withdrawalOnly))
	})

	t.Run("both requires capability", func(t *testing.T) {
		s := TransactionTypes{TransactionBoth}
		assert.True(t, s.RequiresDeposit())
		assert.False(t, s.Matches(withdrawalOnly))
	})
}

func TestDefaultAndNormalize(t *testing.T) {
	userID := uuid.New()

	t.Run("default is permissive", func(t *testing.T) {
		p := Default(userID)
		assert.Equal(t, BankSet{AnyBank}, p.PreferredBanks)
		assert.Equal(t, TransactionTypes{TransactionBoth}, p.TransactionTypes)
		assert.Equal(t, 10, p.MaxRadiusKm)
		assert.Equal(t, "JMD", p.PreferredCurrency)
	})

	t.Run("normalize fills zero values", func(t *testing.T) {
		p := &Preferences{UserID: userID, MaxRadiusKm: -5}
		p.Normalize()
		assert.Equal(t, BankSet{AnyBank}, p.PreferredBanks)
		assert.Equal(t, TransactionTypes{TransactionBoth}, p.TransactionTypes)
		assert.Equal(t, 10, p.MaxRadiusKm)
		assert.Equal(t, "JMD", p.PreferredCurrency)
	})

	t.Run("normalize keeps explicit values", func(t *testing.T) {
		p := Default(userID)
		p.PreferredBanks = BankSet{"JN"}
		p.MaxRadiusKm = 4
		p.Normalize()
		assert.Equal(t, BankSet{"JN"}, p.PreferredBanks)
		assert.Equal(t, 4, p.MaxRadiusKm)
	})
}
