package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"payment_installments/internal/domain/entities"
)

var (
	ErrInvalidDate = errors.New("invalid date")
)

type InstallmentRequest struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
}

// PaymentRequest is the payload accepted by `create` and `update`, either
// decoded from a JSON file or assembled from flags.
type PaymentRequest struct {
	ID            string               `json:"id"`
	TransactionID string               `json:"transaction_id"`
	Amount        float64              `json:"amount"`
	PaymentMethod string               `json:"payment_method"`
	PaymentStatus string               `json:"payment_status"`
	PaymentDate   string               `json:"payment_date"`
	DueDate       string               `json:"due_date"`
	Installments  []InstallmentRequest `json:"installments"`
}

func DecodePaymentRequest(r io.Reader) (PaymentRequest, error) {
	var req PaymentRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return PaymentRequest{}, fmt.Errorf("decode payment payload: %w", err)
	}
	return req, nil
}

func (r PaymentRequest) ResolveID() string {
	if v := strings.TrimSpace(r.ID); v != "" {
		return v
	}
	return entities.NewPaymentID()
}

// ToEntity builds the payment as submitted. Method and status codes are left
// as given; the usecase rejects unknown ones. Installments inherit the payment id.
func (r PaymentRequest) ToEntity(id string, method entities.PaymentMethod, status entities.PaymentStatus) (entities.Payment, error) {
	paymentDate, err := parseOptionalDate(r.PaymentDate)
	if err != nil {
		return entities.Payment{}, err
	}
	p := entities.Payment{
		ID:            id,
		TransactionID: strings.TrimSpace(r.TransactionID),
		Amount:        r.Amount,
		Method:        method,
		Status:        status,
		PaymentDate:   paymentDate,
		Installments:  make([]entities.Installment, 0, len(r.Installments)),
	}
	if strings.TrimSpace(r.DueDate) != "" {
		due, err := parseOptionalDate(r.DueDate)
		if err != nil {
			return entities.Payment{}, err
		}
		p.DueDate = &due
	}
	for _, inst := range r.Installments {
		d, err := parseOptionalDate(inst.PaymentDate)
		if err != nil {
			return entities.Payment{}, err
		}
		p.Installments = append(p.Installments, entities.Installment{
			ID:          strings.TrimSpace(inst.ID),
			PaymentID:   id,
			Amount:      inst.Amount,
			PaymentDate: d,
		})
	}
	return p, nil
}

// parseOptionalDate accepts RFC 3339 or a bare YYYY-MM-DD (UTC midnight).
// Empty input yields the zero time.
func parseOptionalDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}
