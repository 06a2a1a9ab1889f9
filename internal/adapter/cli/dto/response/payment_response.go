package response

import (
	"time"

	"payment_installments/internal/domain/entities"
)

type InstallmentResponse struct {
	ID          string    `json:"id"`
	PaymentID   string    `json:"payment_id"`
	Amount      float64   `json:"amount"`
	PaymentDate time.Time `json:"payment_date"`
}

type PaymentResponse struct {
	ID            string                `json:"id"`
	TransactionID string                `json:"transaction_id"`
	Amount        float64               `json:"amount"`
	PaymentMethod string                `json:"payment_method"`
	PaymentStatus string                `json:"payment_status"`
	PaymentDate   time.Time             `json:"payment_date"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	Installments  []InstallmentResponse `json:"installments"`

	// Informational only; not validated against Amount.
	InstallmentsTotal string `json:"installments_total"`
	Outstanding       string `json:"outstanding"`
}

type ErrorResponse struct {
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func FromPayment(p entities.Payment) PaymentResponse {
	res := PaymentResponse{
		ID:                p.ID,
		TransactionID:     p.TransactionID,
		Amount:            p.Amount,
		PaymentMethod:     string(p.Method),
		PaymentStatus:     string(p.Status),
		PaymentDate:       p.PaymentDate,
		DueDate:           p.DueDate,
		Installments:      make([]InstallmentResponse, 0, len(p.Installments)),
		InstallmentsTotal: p.InstallmentsTotal().StringFixed(2),
		Outstanding:       p.Outstanding().StringFixed(2),
	}
	for _, inst := range p.Installments {
		res.Installments = append(res.Installments, InstallmentResponse{
			ID:          inst.ID,
			PaymentID:   inst.PaymentID,
			Amount:      inst.Amount,
			PaymentDate: inst.PaymentDate,
		})
	}
	return res
}

func FromPayments(items []entities.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(items))
	for _, p := range items {
		out = append(out, FromPayment(p))
	}
	return out
}
