package entities

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the instrument used to settle a payment.
// Values are the codes persisted in storage.

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodEWallet      PaymentMethod = "E_WALLET"
)

// PaymentStatus represents whether a payment was settled at once or is being
// paid in installments.
//
// Stored codes:
//   - LUNAS: paid in full
//   - CICILAN: paid in installments

type PaymentStatus string

const (
	PaymentStatusPaid        PaymentStatus = "LUNAS"
	PaymentStatusInstallment PaymentStatus = "CICILAN"
)

// PaymentMethods lists every known method in a stable order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentMethodCash,
		PaymentMethodCreditCard,
		PaymentMethodBankTransfer,
		PaymentMethodEWallet,
	}
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodBankTransfer, PaymentMethodEWallet:
		return true
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPaid || s == PaymentStatusInstallment
}

// AllowsInstallments reports whether installments may be added while the
// payment is in this status.
func (s PaymentStatus) AllowsInstallments() bool {
	return s == PaymentStatusInstallment
}

// Installment is a partial payment increment linked to a parent Payment.

type Installment struct {
	ID          string    `json:"id"`
	PaymentID   string    `json:"payment_id"`
	Amount      float64   `json:"amount"`
	PaymentDate time.Time `json:"payment_date"`
}

// Payment is the aggregate root persisted by the payment store.
//
// Storage model:
//   - payments(id PK, transaction_id, amount, method, status, payment_date, due_date NULL)
//   - installments(id PK, payment_id FK -> payments.id ON DELETE CASCADE, amount, payment_date)
//
// Installments are kept ordered by payment_date ascending.

type Payment struct {
	ID            string        `json:"id"`
	TransactionID string        `json:"transaction_id"`
	Amount        float64       `json:"amount"`
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	PaymentDate   time.Time     `json:"payment_date"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	Installments  []Installment `json:"installments"`
}

func NewPaymentID() string {
	return "PMT-" + uuid.NewString()
}

func NewInstallmentID() string {
	return "INST-" + uuid.NewString()
}

// Clone returns a copy that shares no mutable state with p.
func (p Payment) Clone() Payment {
	out := p
	if p.DueDate != nil {
		d := *p.DueDate
		out.DueDate = &d
	}
	out.Installments = make([]Installment, len(p.Installments))
	copy(out.Installments, p.Installments)
	return out
}

// InstallmentsTotal sums installment amounts without float drift.
func (p Payment) InstallmentsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range p.Installments {
		total = total.Add(decimal.NewFromFloat(inst.Amount))
	}
	return total
}

// Outstanding is amount minus the installments total. It goes negative when
// installments exceed the amount; nothing prevents that.
func (p Payment) Outstanding() decimal.Decimal {
	return decimal.NewFromFloat(p.Amount).Sub(p.InstallmentsTotal())
}

// SortInstallments orders installments by payment_date, then id.
func SortInstallments(items []Installment) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].PaymentDate.Equal(items[j].PaymentDate) {
			return items[i].ID < items[j].ID
		}
		return items[i].PaymentDate.Before(items[j].PaymentDate)
	})
}
