package interfaces

import (
	"context"

	"payment_installments/internal/domain/entities"
)

// IPaymentRepository abstracts durable storage for payments and their
// installments.
//
// Implementations must:
//   - persist a payment and its initial installments atomically on Create
//   - load installments with a single join (FindByID) or a single batched
//     join over all matched ids (FindAll), never one query per payment
//   - return ErrPaymentNotFound when the payment row is absent
//   - remove installments before the payment row on Delete, in one transaction
//
// Filters passed to FindAll are already validated; recognised keys are
// status, method and transaction_id.

type IPaymentRepository interface {
	Create(ctx context.Context, p entities.Payment) (entities.Payment, error)
	FindByID(ctx context.Context, id string) (entities.Payment, error)
	FindAll(ctx context.Context, filters map[string]string) ([]entities.Payment, error)
	Update(ctx context.Context, p entities.Payment) (entities.Payment, error)
	UpdateStatus(ctx context.Context, id string, status entities.PaymentStatus, additionalAmount *float64) (entities.Payment, error)
	Delete(ctx context.Context, id string) error
	AddInstallment(ctx context.Context, paymentID string, inst entities.Installment) error
}

const (
	FilterStatus        = "status"
	FilterMethod        = "method"
	FilterTransactionID = "transaction_id"
)
