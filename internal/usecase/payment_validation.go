package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"payment_installments/internal/domain/entities"
	"payment_installments/internal/usecase/interfaces"
)

var statusAliases = map[string]entities.PaymentStatus{
	"LUNAS":       entities.PaymentStatusPaid,
	"PAID":        entities.PaymentStatusPaid,
	"CICILAN":     entities.PaymentStatusInstallment,
	"INSTALLMENT": entities.PaymentStatusInstallment,
}

// ParsePaymentMethod resolves a method code case-insensitively.
func ParsePaymentMethod(s string) (entities.PaymentMethod, error) {
	m := entities.PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", &InvalidInputError{Field: "payment_method", Message: "Invalid payment method: " + s}
	}
	return m, nil
}

// ParsePaymentStatus resolves a status case-insensitively. Both the stored
// codes (LUNAS, CICILAN) and PAID / INSTALLMENT are accepted.
func ParsePaymentStatus(s string) (entities.PaymentStatus, error) {
	st, ok := statusAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", &InvalidInputError{Field: "payment_status", Message: "Invalid payment status: " + s}
	}
	return st, nil
}

// validatePayment reports every violation at once.
func validatePayment(p entities.Payment) error {
	var msgs []string

	if strings.TrimSpace(p.ID) == "" {
		msgs = append(msgs, "Payment ID cannot be empty")
	}
	if strings.TrimSpace(p.TransactionID) == "" {
		msgs = append(msgs, "Transaction ID cannot be empty")
	}
	if !(p.Amount > 0) {
		msgs = append(msgs, "Payment amount must be greater than 0")
	}
	if !p.Method.Valid() {
		msgs = append(msgs, fmt.Sprintf("Invalid payment method: %s", p.Method))
	}
	if !p.Status.Valid() {
		msgs = append(msgs, fmt.Sprintf("Invalid payment status: %s", p.Status))
	}
	if p.Status == entities.PaymentStatusInstallment && len(p.Installments) == 0 {
		msgs = append(msgs, "Payment with INSTALLMENT status must have at least one installment")
	}
	for i, inst := range p.Installments {
		if !(inst.Amount > 0) {
			msgs = append(msgs, fmt.Sprintf("Installment %d amount must be greater than 0", i+1))
		}
		if inst.PaymentID != p.ID {
			msgs = append(msgs, fmt.Sprintf("Installment %d payment_id does not match payment ID", i+1))
		}
	}

	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// normalizeFilters validates filter keys and values and returns a copy with
// status and method rewritten to their stored codes. Keys are checked in
// sorted order so messages are deterministic.
func normalizeFilters(filters map[string]string) (map[string]string, error) {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(filters))
	var msgs []string
	for _, k := range keys {
		v := filters[k]
		switch k {
		case interfaces.FilterStatus:
			st, err := ParsePaymentStatus(v)
			if err != nil {
				msgs = append(msgs, "Invalid status filter: "+v)
				continue
			}
			out[k] = string(st)
		case interfaces.FilterMethod:
			m, err := ParsePaymentMethod(v)
			if err != nil {
				msgs = append(msgs, "Invalid method filter: "+v)
				continue
			}
			out[k] = string(m)
		case interfaces.FilterTransactionID:
			if strings.TrimSpace(v) == "" {
				msgs = append(msgs, "Transaction ID filter cannot be empty")
				continue
			}
			out[k] = v
		default:
			msgs = append(msgs, "Unknown filter key: "+k)
		}
	}

	if len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}
	return out, nil
}

// normalizePayment trims identifiers and fills the values a caller may
// leave out. It runs before validation and performs no I/O.
func normalizePayment(p entities.Payment, now time.Time) entities.Payment {
	p = p.Clone()
	p.ID = strings.TrimSpace(p.ID)
	p.TransactionID = strings.TrimSpace(p.TransactionID)
	if p.PaymentDate.IsZero() {
		p.PaymentDate = now
	}
	p.PaymentDate = p.PaymentDate.UTC().Truncate(time.Microsecond)
	if p.DueDate != nil {
		d := p.DueDate.UTC().Truncate(time.Microsecond)
		p.DueDate = &d
	}
	for i := range p.Installments {
		inst := &p.Installments[i]
		inst.PaymentID = strings.TrimSpace(inst.PaymentID)
		if inst.ID == "" {
			inst.ID = entities.NewInstallmentID()
		}
		if inst.PaymentDate.IsZero() {
			inst.PaymentDate = p.PaymentDate
		}
		inst.PaymentDate = inst.PaymentDate.UTC().Truncate(time.Microsecond)
	}
	return p
}

// samePayment is the change-detection predicate used by UpdatePayment.
func samePayment(a, b entities.Payment) bool {
	return a.ID == b.ID &&
		a.TransactionID == b.TransactionID &&
		math.Abs(a.Amount-b.Amount) < epsilon &&
		a.Method == b.Method &&
		a.Status == b.Status &&
		len(a.Installments) == len(b.Installments)
}

// Machine epsilon for float64, 2^-52.
const epsilon = 2.220446049250313e-16
