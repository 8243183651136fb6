// Package pricing estimates processor fees per payment method so the
// checkout can show the cheapest way to pay.
package pricing

import (
	"github.com/shopspring/decimal"
)

type Method struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Popular     bool   `json:"popular,omitempty"`

	percent decimal.Decimal
	fixed   decimal.Decimal
	cap     decimal.Decimal
	label   string
}

type FeeCalculation struct {
	OriginalAmount decimal.Decimal `json:"originalAmount"`
	Fee            decimal.Decimal `json:"fee"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
	Description    string          `json:"description"`
}

func method(id, name, description, label string, percent, fixed string) Method {
	return Method{
		ID:          id,
		Name:        name,
		Description: description,
		percent:     decimal.RequireFromString(percent),
		fixed:       decimal.RequireFromString(fixed),
		label:       label,
	}
}

var card = func() Method {
	m := method("card", "Credit/Debit Card", "Visa, Mastercard, American Express", "1.4% + €0.25", "0.014", "0.25")
	m.Popular = true
	return m
}()

var sepa = func() Method {
	m := method("sepa_debit", "SEPA Direct Debit", "Direct bank transfer (EU only)", "0.8% + €0.25 (max €5)", "0.008", "0.25")
	m.cap = decimal.NewFromInt(5)
	return m
}()

// Methods is ordered as displayed; the first entry wins ties in Best.
var Methods = []Method{
	card,
	method("paypal", "PayPal", "Pay with your PayPal account", "3.4% + €0.35", "0.034", "0.35"),
	method("apple_pay", "Apple Pay", "Quick payment with Touch ID or Face ID", "1.4% + €0.25", "0.014", "0.25"),
	method("google_pay", "Google Pay", "Fast and secure Google payment", "1.4% + €0.25", "0.014", "0.25"),
	sepa,
	method("sofort", "Sofort", "Instant bank transfer", "1.4% + €0.25", "0.014", "0.25"),
	method("bancontact", "Bancontact", "Belgian payment method", "1.4% + €0.25", "0.014", "0.25"),
}

// Calculate rounds the fee to cents after applying the cap.
func (m Method) Calculate(amount decimal.Decimal) FeeCalculation {
	fee := amount.Mul(m.percent).Add(m.fixed)
	if m.cap.IsPositive() && fee.GreaterThan(m.cap) {
		fee = m.cap
	}
	fee = fee.Round(2)

	return FeeCalculation{
		OriginalAmount: amount,
		Fee:            fee,
		FinalAmount:    amount.Add(fee),
		Description:    m.label,
	}
}

func MethodByID(id string) (Method, bool) {
	for _, m := range Methods {
		if m.ID == id {
			return m, true
		}
	}
	return Method{}, false
}

// FeeFor falls back to card pricing for unknown methods.
func FeeFor(amount decimal.Decimal, methodID string) FeeCalculation {
	m, ok := MethodByID(methodID)
	if !ok {
		m = card
	}
	return m.Calculate(amount)
}

func Best(amount decimal.Decimal) (Method, FeeCalculation) {
	best := Methods[0]
	bestCalc := best.Calculate(amount)

	for _, m := range Methods[1:] {
		calc := m.Calculate(amount)
		if calc.Fee.LessThan(bestCalc.Fee) {
			best, bestCalc = m, calc
		}
	}

	return best, bestCalc
}

type Quote struct {
	Method      Method         `json:"method"`
	Calculation FeeCalculation `json:"calculation"`
}

type Comparison struct {
	Amount  decimal.Decimal `json:"amount"`
	Methods []Quote         `json:"methods"`
	Best    Quote           `json:"best"`
}

func Compare(amount decimal.Decimal) Comparison {
	quotes := make([]Quote, 0, len(Methods))
	for _, m := range Methods {
		quotes = append(quotes, Quote{Method: m, Calculation: m.Calculate(amount)})
	}

	best, calc := Best(amount)
	return Comparison{
		Amount:  amount,
		Methods: quotes,
		Best:    Quote{Method: best, Calculation: calc},
	}
}
