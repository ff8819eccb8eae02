package atm

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Bank identifies the institution operating an ATM
type Bank string

const (
	BankNCB     Bank = "NCB"
	BankBNS     Bank = "BNS"
	BankJMMB    Bank = "JMMB"
	BankCIBC    Bank = "CIBC"
	BankJN      Bank = "JN"
	BankFCIB    Bank = "FCIB"
	BankSagicor Bank = "Sagicor"
	BankUnknown Bank = "Unknown"
)

// bankPatterns maps each bank to the substrings that identify it in a
// location name. Order matters: more specific patterns are checked first
// so "FIRSTCARIBBEAN" prefers CIBC over FCIB deterministically.
var bankPatterns = []struct {
	bank     Bank
	patterns []string
}{
	{BankNCB, []string{"NCB", "NATIONAL COMMERCIAL BANK"}},
	{BankBNS, []string{"BNS", "BANK OF NOVA SCOTIA", "SCOTIABANK", "SCOTIA"}},
	{BankJMMB, []string{"JMMB", "JAMAICA MONEY MARKET"}},
	{BankCIBC, []string{"CIBC", "FIRSTCARIBBEAN"}},
	{BankJN, []string{"JN BANK", "JAMAICA NATIONAL"}},
	{BankFCIB, []string{"FCIB"}},
	{BankSagicor, []string{"SAGICOR", "SBJ"}},
}

// InferBank derives the operating bank from a location name by substring
// matching. Branded names win on their own patterns; an unbranded name
// still carrying the provider prefix falls to Sagicor, the feed's
// operator. Only unprefixed unbranded locations map to BankUnknown.
func InferBank(location string) Bank {
	upper := strings.ToUpper(location)
	for _, entry := range bankPatterns {
		for _, p := range entry.patterns {
			if strings.Contains(upper, p) {
				return entry.bank
			}
		}
	}
	return BankUnknown
}

// KnownBank reports whether code names a recognized institution
func KnownBank(code string) bool {
	switch Bank(code) {
	case BankNCB, BankBNS, BankJMMB, BankCIBC, BankJN, BankFCIB, BankSagicor, BankUnknown:
		return true
	}
	return false
}

// FullName returns the institution's display name
func (b Bank) FullName() string {
	switch b {
	case BankBNS:
		return "Bank of Nova Scotia"
	case BankNCB:
		return "National Commercial Bank"
	case BankJMMB:
		return "Jamaica Money Market Brokers"
	case BankCIBC:
		return "CIBC FirstCaribbean"
	case BankJN:
		return "Jamaica National"
	case BankFCIB:
		return "First Caribbean International Bank"
	case BankSagicor:
		return "Sagicor Bank"
	default:
		return "Unknown Bank"
	}
}

// String returns the bank code
func (b Bank) String() string {
	return string(b)
}

// Typical out-of-network fees in JMD. These are published schedules, not
// live data, so the amounts are fixed per bank with a conservative default
// for unrecognized institutions.
var (
	withdrawalFees = map[Bank]decimal.Decimal{
		BankBNS:     decimal.NewFromInt(150),
		BankNCB:     decimal.NewFromInt(100),
		BankJMMB:    decimal.NewFromInt(200),
		BankCIBC:    decimal.NewFromInt(175),
		BankJN:      decimal.NewFromInt(125),
		BankFCIB:    decimal.NewFromInt(175),
		BankSagicor: decimal.NewFromInt(150),
	}
	depositFees = map[Bank]decimal.Decimal{
		BankBNS:     decimal.NewFromInt(75),
		BankNCB:     decimal.NewFromInt(50),
		BankJMMB:    decimal.NewFromInt(100),
		BankCIBC:    decimal.NewFromInt(85),
		BankJN:      decimal.NewFromInt(60),
		BankFCIB:    decimal.NewFromInt(85),
		BankSagicor: decimal.NewFromInt(75),
	}

	defaultWithdrawalFee = decimal.NewFromInt(200)
	defaultDepositFee    = decimal.NewFromInt(75)
)

// WithdrawalFee returns the typical withdrawal fee in JMD
func (b Bank) WithdrawalFee() decimal.Decimal {
	if fee, ok := withdrawalFees[b]; ok {
		return fee
	}
	return defaultWithdrawalFee
}

// DepositFee returns the typical deposit fee in JMD
func (b Bank) DepositFee() decimal.Decimal {
	if fee, ok := depositFees[b]; ok {
		return fee
	}
	return defaultDepositFee
}
