package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"payment_installments/internal/domain/entities"
	"payment_installments/internal/usecase/interfaces"
)

const DefaultPaymentCacheTTL = 300 * time.Second

// IPaymentUseCase is the single entry point for payment operations.
//
// Every method validates before touching storage and returns errors from
// the taxonomy in payment_errors.go. Successful writes invalidate the cached
// snapshot before the fresh one is stored. Cache fills are conditional on
// the id's invalidation generation, so a read that raced a write never
// caches what the write replaced.

type IPaymentUseCase interface {
	CreatePayment(ctx context.Context, p entities.Payment) (entities.Payment, error)
	GetPaymentByID(ctx context.Context, id string) (entities.Payment, error)
	GetAllPayments(ctx context.Context, filters map[string]string) ([]entities.Payment, error)
	UpdatePayment(ctx context.Context, p entities.Payment) (entities.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id string, status entities.PaymentStatus, additionalAmount *float64) (entities.Payment, error)
	DeletePayment(ctx context.Context, id string) error
	AddInstallment(ctx context.Context, id string, amount float64) (entities.Payment, error)
	ClearCache(ctx context.Context) error
}

type PaymentUseCase struct {
	repo  interfaces.IPaymentRepository
	cache interfaces.IPaymentCache
	ttl   time.Duration
	now   func() time.Time
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(repo interfaces.IPaymentRepository, cache interfaces.IPaymentCache, ttl time.Duration) *PaymentUseCase {
	if ttl <= 0 {
		ttl = DefaultPaymentCacheTTL
	}
	return &PaymentUseCase{repo: repo, cache: cache, ttl: ttl, now: time.Now}
}

func (u *PaymentUseCase) CreatePayment(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	p = normalizePayment(p, u.now())
	log.Printf("[payment][usecase] create start payment_id=%s transaction_id=%s installments=%d", p.ID, p.TransactionID, len(p.Installments))
	if err := validatePayment(p); err != nil {
		log.Printf("[payment][usecase] create rejected payment_id=%s err=%v", p.ID, err)
		return entities.Payment{}, err
	}

	before, known := u.generation(ctx, p.ID)
	created, err := u.repo.Create(ctx, p)
	if err != nil {
		log.Printf("[payment][usecase] repository create failed payment_id=%s err=%v", p.ID, err)
		return entities.Payment{}, translateStoreError(err, p.ID)
	}
	if err := u.refresh(ctx, created.ID, created, before, known); err != nil {
		return entities.Payment{}, err
	}
	log.Printf("[payment][usecase] create success payment_id=%s status=%s", created.ID, created.Status)
	return created, nil
}

func (u *PaymentUseCase) GetPaymentByID(ctx context.Context, id string) (entities.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Payment{}, &InvalidInputError{Field: "id", Message: "Payment ID cannot be empty"}
	}

	cached, ok, err := u.cache.Get(ctx, id)
	if err != nil {
		log.Printf("[payment][usecase] cache read failed; falling back to repository payment_id=%s err=%v", id, err)
	} else if ok {
		return cached, nil
	}

	gen, known := u.generation(ctx, id)
	p, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return entities.Payment{}, translateStoreError(err, id)
	}
	if known {
		u.fill(ctx, id, gen, p)
	}
	return p, nil
}

func (u *PaymentUseCase) GetAllPayments(ctx context.Context, filters map[string]string) ([]entities.Payment, error) {
	normalized, err := normalizeFilters(filters)
	if err != nil {
		log.Printf("[payment][usecase] list rejected filters=%v err=%v", filters, err)
		return nil, err
	}
	payments, err := u.repo.FindAll(ctx, normalized)
	if err != nil {
		return nil, translateStoreError(err, "")
	}
	return payments, nil
}

// UpdatePayment writes scalar fields only when they differ from the stored
// payment by id, transaction_id, amount, method, status or installment count.
func (u *PaymentUseCase) UpdatePayment(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	p = normalizePayment(p, u.now())
	if err := validatePayment(p); err != nil {
		log.Printf("[payment][usecase] update rejected payment_id=%s err=%v", p.ID, err)
		return entities.Payment{}, err
	}

	existing, err := u.GetPaymentByID(ctx, p.ID)
	if err != nil {
		return entities.Payment{}, err
	}
	if samePayment(existing, p) {
		log.Printf("[payment][usecase] update skipped; no changes payment_id=%s", p.ID)
		return existing, nil
	}

	before, known := u.generation(ctx, p.ID)
	updated, err := u.repo.Update(ctx, p)
	if err != nil {
		log.Printf("[payment][usecase] repository update failed payment_id=%s err=%v", p.ID, err)
		return entities.Payment{}, translateStoreError(err, p.ID)
	}
	if err := u.refresh(ctx, updated.ID, updated, before, known); err != nil {
		return entities.Payment{}, err
	}
	log.Printf("[payment][usecase] update success payment_id=%s", updated.ID)
	return updated, nil
}

// UpdatePaymentStatus changes status in either direction. A non-nil
// additionalAmount records one more installment in the same write.
func (u *PaymentUseCase) UpdatePaymentStatus(ctx context.Context, id string, status entities.PaymentStatus, additionalAmount *float64) (entities.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Payment{}, &InvalidInputError{Field: "id", Message: "Payment ID cannot be empty"}
	}
	if !status.Valid() {
		return entities.Payment{}, &InvalidInputError{Field: "payment_status", Message: "Invalid payment status: " + string(status)}
	}
	if additionalAmount != nil && !(*additionalAmount > 0) {
		return entities.Payment{}, &InvalidInputError{Field: "additional_amount", Message: "Amount must be greater than 0"}
	}

	log.Printf("[payment][usecase] update-status start payment_id=%s status=%s with_installment=%t", id, status, additionalAmount != nil)
	before, known := u.generation(ctx, id)
	updated, err := u.repo.UpdateStatus(ctx, id, status, additionalAmount)
	if err != nil {
		log.Printf("[payment][usecase] repository update-status failed payment_id=%s err=%v", id, err)
		return entities.Payment{}, translateStoreError(err, id)
	}
	if err := u.refresh(ctx, id, updated, before, known); err != nil {
		return entities.Payment{}, err
	}
	return updated, nil
}

func (u *PaymentUseCase) DeletePayment(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return &InvalidInputError{Field: "id", Message: "Payment ID cannot be empty"}
	}

	if _, err := u.repo.FindByID(ctx, id); err != nil {
		return translateStoreError(err, id)
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		log.Printf("[payment][usecase] repository delete failed payment_id=%s err=%v", id, err)
		return translateStoreError(err, id)
	}
	if _, err := u.invalidate(ctx, id); err != nil {
		return err
	}
	log.Printf("[payment][usecase] delete success payment_id=%s", id)
	return nil
}

func (u *PaymentUseCase) AddInstallment(ctx context.Context, id string, amount float64) (entities.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Payment{}, &InvalidInputError{Field: "id", Message: "Payment ID cannot be empty"}
	}
	if !(amount > 0) {
		return entities.Payment{}, &InvalidInputError{Field: "amount", Message: "Amount must be greater than 0"}
	}

	current, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return entities.Payment{}, translateStoreError(err, id)
	}
	if !current.Status.AllowsInstallments() {
		log.Printf("[payment][usecase] add-installment rejected payment_id=%s status=%s", id, current.Status)
		return entities.Payment{}, &InvalidInputError{
			Field:   "payment_status",
			Message: "Cannot add installment to a payment that is not in INSTALLMENT status",
		}
	}

	inst := entities.Installment{
		ID:          entities.NewInstallmentID(),
		PaymentID:   id,
		Amount:      amount,
		PaymentDate: u.now().UTC().Truncate(time.Microsecond),
	}
	if err := u.repo.AddInstallment(ctx, id, inst); err != nil {
		log.Printf("[payment][usecase] repository add-installment failed payment_id=%s err=%v", id, err)
		return entities.Payment{}, translateStoreError(err, id)
	}
	if _, err := u.invalidate(ctx, id); err != nil {
		return entities.Payment{}, err
	}

	refreshed, err := u.GetPaymentByID(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}
	log.Printf("[payment][usecase] add-installment success payment_id=%s installment_id=%s installments=%d", id, inst.ID, len(refreshed.Installments))
	return refreshed, nil
}

func (u *PaymentUseCase) ClearCache(ctx context.Context) error {
	if err := u.cache.Clear(ctx); err != nil {
		return &CacheError{Message: err.Error(), Err: err}
	}
	log.Printf("[payment][usecase] cache cleared")
	return nil
}

// generation reads the invalidation generation of id. known is false when
// the cache cannot answer; callers then skip filling.
func (u *PaymentUseCase) generation(ctx context.Context, id string) (gen uint64, known bool) {
	gen, err := u.cache.Generation(ctx, id)
	if err != nil {
		log.Printf("[payment][usecase] cache generation read failed payment_id=%s err=%v", id, err)
		return 0, false
	}
	return gen, true
}

// fill caches p unless id was invalidated after gen was read.
func (u *PaymentUseCase) fill(ctx context.Context, id string, gen uint64, p entities.Payment) {
	stored, err := u.cache.PutIfUnchanged(ctx, id, gen, p, u.ttl)
	switch {
	case err != nil:
		log.Printf("[payment][usecase] cache put failed payment_id=%s err=%v", id, err)
	case !stored:
		log.Printf("[payment][usecase] cache fill skipped; invalidated during read payment_id=%s gen=%d", id, gen)
	}
}

// invalidate drops the cached entry for id. Failing to drop it is an error
// because a stale snapshot could outlive the write.
func (u *PaymentUseCase) invalidate(ctx context.Context, id string) (uint64, error) {
	gen, err := u.cache.Invalidate(ctx, id)
	if err != nil {
		log.Printf("[payment][usecase] cache invalidate failed payment_id=%s err=%v", id, err)
		return 0, &CacheError{Message: err.Error(), Err: err}
	}
	return gen, nil
}

// refresh invalidates id and stores the written snapshot p. before is the
// generation read ahead of the store write. When another invalidation
// happened in between, a concurrent writer may hold newer data, so p is
// not cached and the next read repopulates.
func (u *PaymentUseCase) refresh(ctx context.Context, id string, p entities.Payment, before uint64, known bool) error {
	gen, err := u.invalidate(ctx, id)
	if err != nil {
		return err
	}
	if !known || gen != before+1 {
		log.Printf("[payment][usecase] cache refresh skipped payment_id=%s gen=%d", id, gen)
		return nil
	}
	u.fill(ctx, id, gen, p)
	return nil
}
