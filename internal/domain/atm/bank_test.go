package atm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInferBank(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     Bank
	}{
		{"ncb by code", "NCB Half Way Tree", BankNCB},
		{"ncb by full name", "National Commercial Bank Portmore", BankNCB},
		{"scotia", "Scotiabank Liguanea", BankBNS},
		{"jmmb", "JMMB Knutsford Blvd", BankJMMB},
		{"cibc", "CIBC FirstCaribbean Montego Bay", BankCIBC},
		{"jn bank", "JN Bank May Pen", BankJN},
		{"fcib", "FCIB Mandeville", BankFCIB},
		{"sagicor", "Sagicor Bank Ocho Rios", BankSagicor},
		{"lowercase input", "sagicor dome street", BankSagicor},
		{"unmatched location", "Pharmacy Plaza Spanish Town", BankUnknown},
		{"empty", "", BankUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferBank(tt.location))
		})
	}
}

func TestInferBankProviderPrefix(t *testing.T) {
	// A branded name wins on its own pattern even when prefixed; an
	// unbranded prefixed location belongs to the feed operator.
	assert.Equal(t, BankNCB, InferBank("sbj_NCB Half Way Tree"))
	assert.Equal(t, BankSagicor, InferBank("sbj_Pharmacy Plaza"))
	assert.Equal(t, BankSagicor, InferBank("SBJ Constant Spring"))
}

func TestBankFullName(t *testing.T) {
	assert.Equal(t, "National Commercial Bank", BankNCB.FullName())
	assert.Equal(t, "Bank of Nova Scotia", BankBNS.FullName())
	assert.Equal(t, "Unknown Bank", BankUnknown.FullName())
	assert.Equal(t, "Unknown Bank", Bank("Nonexistent").FullName())
}

func TestBankFees(t *testing.T) {
	t.Run("known bank", func(t *testing.T) {
		assert.True(t, BankNCB.WithdrawalFee().Equal(decimal.NewFromInt(100)))
		assert.True(t, BankNCB.DepositFee().Equal(decimal.NewFromInt(50)))
	})

	t.Run("unknown bank falls back to default", func(t *testing.T) {
		assert.True(t, BankUnknown.WithdrawalFee().Equal(decimal.NewFromInt(200)))
		assert.True(t, BankUnknown.DepositFee().Equal(decimal.NewFromInt(75)))
	})
}
