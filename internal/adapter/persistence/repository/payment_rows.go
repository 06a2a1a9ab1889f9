package repository

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"payment_installments/internal/domain/entities"
	"payment_installments/internal/usecase/interfaces"
)

// paymentRow is one row of the payments LEFT JOIN installments result set.
// Amount and date columns are kept untyped because drivers disagree on how
// they surface numeric and timestamp values.
type paymentRow struct {
	ID            string
	TransactionID string
	Amount        any
	Method        string
	Status        string
	PaymentDate   any
	DueDate       any

	InstID        sql.NullString
	InstPaymentID sql.NullString
	InstAmount    any
	InstDate      any
}

// aggregatePayments folds joined rows into payments with their installments.
// Payments come out in the order their id was first seen, so the caller's
// ORDER BY decides the result order.
func aggregatePayments(rows []paymentRow) ([]entities.Payment, error) {
	out := make([]entities.Payment, 0)
	index := make(map[string]int)

	for _, r := range rows {
		pos, seen := index[r.ID]
		if !seen {
			p, err := r.payment()
			if err != nil {
				return nil, err
			}
			pos = len(out)
			index[r.ID] = pos
			out = append(out, p)
		}

		if !r.InstID.Valid {
			continue
		}
		inst, err := r.installment()
		if err != nil {
			return nil, err
		}
		out[pos].Installments = append(out[pos].Installments, inst)
	}
	return out, nil
}

func (r paymentRow) payment() (entities.Payment, error) {
	method := entities.PaymentMethod(r.Method)
	if !method.Valid() {
		return entities.Payment{}, interfaces.NewDecodeError("payment %s: unknown method %q", r.ID, r.Method)
	}
	status := entities.PaymentStatus(r.Status)
	if !status.Valid() {
		return entities.Payment{}, interfaces.NewDecodeError("payment %s: unknown status %q", r.ID, r.Status)
	}
	paidAt, err := decodeTimestamp(r.PaymentDate)
	if err != nil {
		return entities.Payment{}, fmt.Errorf("payment %s payment_date: %w", r.ID, err)
	}

	p := entities.Payment{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		Amount:        decodeAmount(r.Amount),
		Method:        method,
		Status:        status,
		PaymentDate:   paidAt,
		Installments:  []entities.Installment{},
	}
	if !isNull(r.DueDate) {
		due, err := decodeTimestamp(r.DueDate)
		if err != nil {
			return entities.Payment{}, fmt.Errorf("payment %s due_date: %w", r.ID, err)
		}
		p.DueDate = &due
	}
	return p, nil
}

func (r paymentRow) installment() (entities.Installment, error) {
	paidAt, err := decodeTimestamp(r.InstDate)
	if err != nil {
		return entities.Installment{}, fmt.Errorf("installment %s payment_date: %w", r.InstID.String, err)
	}
	paymentID := r.InstPaymentID.String
	if paymentID == "" {
		paymentID = r.ID
	}
	return entities.Installment{
		ID:          r.InstID.String,
		PaymentID:   paymentID,
		Amount:      decodeAmount(r.InstAmount),
		PaymentDate: paidAt,
	}, nil
}

// decodeAmount reads a numeric column as float64, widening narrower
// representations. Values that cannot be read at all become 0.
func decodeAmount(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	case []byte:
		return decodeAmount(string(n))
	case string:
		s := strings.TrimSpace(n)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		if f, err := strconv.ParseFloat(s, 32); err == nil {
			return float64(float32(f))
		}
	}
	return 0
}

var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05.999999999-07",
	}
	fractionalLayout = "2006-01-02 15:04:05.999999999"
	secondsLayout    = "2006-01-02 15:04:05"
)

// decodeTimestamp accepts driver time values or text in one of: a zoned
// timestamp, a local timestamp with fractional seconds, a local timestamp
// with whole seconds. Anything else is a decode error; dates never default.
func decodeTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case []byte:
		return decodeTimestamp(string(t))
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range zonedLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), nil
			}
		}
		if ts, err := time.ParseInLocation(fractionalLayout, s, time.UTC); err == nil {
			return ts, nil
		}
		if ts, err := time.ParseInLocation(secondsLayout, s, time.UTC); err == nil {
			return ts, nil
		}
		return time.Time{}, interfaces.NewDecodeError("unrecognised timestamp %q", s)
	case nil:
		return time.Time{}, interfaces.NewDecodeError("timestamp is null")
	}
	return time.Time{}, interfaces.NewDecodeError("unsupported timestamp type %T", v)
}

func isNull(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *time.Time:
		return t == nil
	}
	return false
}
