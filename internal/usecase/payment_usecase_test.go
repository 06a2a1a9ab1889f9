package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"payment_installments/internal/domain/entities"
	"payment_installments/internal/usecase/interfaces"
	mock_interfaces "payment_installments/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestUseCase(t *testing.T) (*PaymentUseCase, *mock_interfaces.MockIPaymentRepository, *mock_interfaces.MockIPaymentCache) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
	cache := mock_interfaces.NewMockIPaymentCache(ctrl)
	uc := NewPaymentUseCase(repo, cache, 0)
	uc.now = func() time.Time { return fixedNow }
	return uc, repo, cache
}

// expectMiss records a cache miss for id followed by a generation read.
func expectMiss(cache *mock_interfaces.MockIPaymentCache, id string, gen uint64) *gomock.Call {
	cache.EXPECT().Get(gomock.Any(), id).Return(entities.Payment{}, false, nil)
	return cache.EXPECT().Generation(gomock.Any(), id).Return(gen, nil)
}

func paidPayment(id string) entities.Payment {
	return entities.Payment{
		ID:            id,
		TransactionID: "TXN-1",
		Amount:        1000,
		Method:        entities.PaymentMethodCash,
		Status:        entities.PaymentStatusPaid,
		PaymentDate:   fixedNow,
		Installments:  []entities.Installment{},
	}
}

func installmentPayment(id string, amounts ...float64) entities.Payment {
	p := paidPayment(id)
	p.Status = entities.PaymentStatusInstallment
	for i, a := range amounts {
		p.Installments = append(p.Installments, entities.Installment{
			ID:          id + "-" + string(rune('a'+i)),
			PaymentID:   id,
			Amount:      a,
			PaymentDate: fixedNow.Add(time.Duration(i) * time.Hour),
		})
	}
	return p
}

func TestPaymentUseCase_CreatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("collects every violation before any I/O", func(t *testing.T) {
		uc, _, _ := newTestUseCase(t)
		p := entities.Payment{
			Method: entities.PaymentMethodCash,
			Status: entities.PaymentStatusInstallment,
		}

		_, err := uc.CreatePayment(ctx, p)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		want := []string{
			"Payment ID cannot be empty",
			"Transaction ID cannot be empty",
			"Payment amount must be greater than 0",
			"Payment with INSTALLMENT status must have at least one installment",
		}
		if !reflect.DeepEqual(verr.Messages, want) {
			t.Fatalf("unexpected messages: %q", verr.Messages)
		}
	})

	t.Run("installment violations are numbered", func(t *testing.T) {
		uc, _, _ := newTestUseCase(t)
		p := installmentPayment("PMT-1", 100, -5)
		p.Installments[0].PaymentID = "PMT-OTHER"

		_, err := uc.CreatePayment(ctx, p)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		want := []string{
			"Installment 1 payment_id does not match payment ID",
			"Installment 2 amount must be greater than 0",
		}
		if !reflect.DeepEqual(verr.Messages, want) {
			t.Fatalf("unexpected messages: %q", verr.Messages)
		}
		if KindOf(err) != KindValidation || !errors.Is(err, ErrValidation) {
			t.Fatalf("unexpected kind %s", KindOf(err))
		}
	})

	t.Run("success caches the stored payment", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		p := installmentPayment("PMT-2", 300, 700)
		p.Installments[1].ID = ""
		p.PaymentDate = time.Time{}

		var stored entities.Payment
		gomock.InOrder(
			cache.EXPECT().Generation(gomock.Any(), "PMT-2").Return(uint64(0), nil),
			repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, in entities.Payment) (entities.Payment, error) {
				stored = in
				return in, nil
			}),
			cache.EXPECT().Invalidate(gomock.Any(), "PMT-2").Return(uint64(1), nil),
			cache.EXPECT().PutIfUnchanged(gomock.Any(), "PMT-2", uint64(1), gomock.Any(), DefaultPaymentCacheTTL).Return(true, nil),
		)

		got, err := uc.CreatePayment(ctx, p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !stored.PaymentDate.Equal(fixedNow) {
			t.Fatalf("expected payment_date defaulted to now, got %v", stored.PaymentDate)
		}
		if stored.Installments[1].ID == "" {
			t.Fatalf("expected generated installment id")
		}
		if got.ID != "PMT-2" || len(got.Installments) != 2 {
			t.Fatalf("unexpected payment: %+v", got)
		}
	})

	t.Run("store errors are translated", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		cache.EXPECT().Generation(gomock.Any(), "PMT-1").Return(uint64(0), nil)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Payment{}, &interfaces.StoreError{
			Kind: interfaces.StoreErrorQuery, Code: "23505", Err: errors.New("duplicate key"),
		})

		_, err := uc.CreatePayment(ctx, paidPayment("PMT-1"))
		var dbErr *DatabaseError
		if !errors.As(err, &dbErr) || dbErr.Code != "23505" {
			t.Fatalf("expected DatabaseError with code, got %v", err)
		}
	})
}

func TestPaymentUseCase_GetPaymentByID(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips the store", func(t *testing.T) {
		uc, _, cache := newTestUseCase(t)
		cache.EXPECT().Get(gomock.Any(), "PMT-1").Return(paidPayment("PMT-1"), true, nil)

		got, err := uc.GetPaymentByID(ctx, "PMT-1")
		if err != nil || got.ID != "PMT-1" {
			t.Fatalf("unexpected result: %+v err=%v", got, err)
		}
	})

	t.Run("miss loads and fills at the generation read before loading", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		gomock.InOrder(
			expectMiss(cache, "PMT-1", 3),
			repo.EXPECT().FindByID(gomock.Any(), "PMT-1").Return(paidPayment("PMT-1"), nil),
			cache.EXPECT().PutIfUnchanged(gomock.Any(), "PMT-1", uint64(3), gomock.Any(), DefaultPaymentCacheTTL).Return(true, nil),
		)

		if _, err := uc.GetPaymentByID(ctx, "PMT-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("fill rejected after a concurrent invalidation still returns the read", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		expectMiss(cache, "PMT-1", 3)
		repo.EXPECT().FindByID(gomock.Any(), "PMT-1").Return(paidPayment("PMT-1"), nil)
		cache.EXPECT().PutIfUnchanged(gomock.Any(), "PMT-1", uint64(3), gomock.Any(), gomock.Any()).Return(false, nil)

		got, err := uc.GetPaymentByID(ctx, "PMT-1")
		if err != nil || got.ID != "PMT-1" {
			t.Fatalf("unexpected result: %+v err=%v", got, err)
		}
	})

	t.Run("cache outage falls back to store without filling", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		cache.EXPECT().Get(gomock.Any(), "PMT-1").Return(entities.Payment{}, false, errors.New("redis down"))
		cache.EXPECT().Generation(gomock.Any(), "PMT-1").Return(uint64(0), errors.New("redis down"))
		repo.EXPECT().FindByID(gomock.Any(), "PMT-1").Return(paidPayment("PMT-1"), nil)
		// No PutIfUnchanged expectation: an unfenced fill fails the test.

		if _, err := uc.GetPaymentByID(ctx, "PMT-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("fill failure is not fatal", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		expectMiss(cache, "PMT-1", 0)
		repo.EXPECT().FindByID(gomock.Any(), "PMT-1").Return(paidPayment("PMT-1"), nil)
		cache.EXPECT().PutIfUnchanged(gomock.Any(), "PMT-1", uint64(0), gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))

		if _, err := uc.GetPaymentByID(ctx, "PMT-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		expectMiss(cache, "PMT-404", 0)
		repo.EXPECT().FindByID(gomock.Any(), "PMT-404").Return(entities.Payment{}, interfaces.ErrPaymentNotFound)

		_, err := uc.GetPaymentByID(ctx, "PMT-404")
		var nf *NotFoundError
		if !errors.As(err, &nf) || nf.Entity != "Payment" || nf.ID != "PMT-404" {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})

	t.Run("connection errors stay distinct", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		expectMiss(cache, "PMT-1", 0)
		repo.EXPECT().FindByID(gomock.Any(), "PMT-1").Return(entities.Payment{}, &interfaces.StoreError{
			Kind: interfaces.StoreErrorConnection, Err: context.DeadlineExceeded,
		})

		_, err := uc.GetPaymentByID(ctx, "PMT-1")
		if !errors.Is(err, ErrConnection) || errors.Is(err, ErrDatabase) {
			t.Fatalf("expected ConnectionError, got %v", err)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected cause to be preserved, got %v", err)
		}
	})

	t.Run("decode failures are database errors", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		expectMiss(cache, "PMT-1", 0)
		repo.EXPECT().FindByID(gomock.Any(), "PMT-1").Return(entities.Payment{}, interfaces.NewDecodeError("bad date"))

		_, err := uc.GetPaymentByID(ctx, "PMT-1")
		var dbErr *DatabaseError
		if !errors.As(err, &dbErr) || dbErr.Code != "decode" {
			t.Fatalf("expected decode DatabaseError, got %v", err)
		}
	})
}

func TestPaymentUseCase_GetAllPayments(t *testing.T) {
	ctx := context.Background()

	t.Run("filters are canonicalized", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.EXPECT().FindAll(gomock.Any(), map[string]string{
			"status": "CICILAN", "method": "E_WALLET", "transaction_id": "TXN-1",
		}).Return([]entities.Payment{installmentPayment("PMT-1", 1)}, nil)

		got, err := uc.GetAllPayments(ctx, map[string]string{
			"status": "installment", "method": "e_wallet", "transaction_id": "TXN-1",
		})
		if err != nil || len(got) != 1 {
			t.Fatalf("unexpected result: %+v err=%v", got, err)
		}
	})

	t.Run("every bad filter is reported and nothing is queried", func(t *testing.T) {
		uc, _, _ := newTestUseCase(t)
		_, err := uc.GetAllPayments(ctx, map[string]string{
			"status": "REFUNDED", "method": "CHEQUE", "transaction_id": " ", "amount": "5",
		})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		want := []string{
			"Unknown filter key: amount",
			"Invalid method filter: CHEQUE",
			"Invalid status filter: REFUNDED",
			"Transaction ID filter cannot be empty",
		}
		if !reflect.DeepEqual(verr.Messages, want) {
			t.Fatalf("unexpected messages: %q", verr.Messages)
		}
	})

	t.Run("nil filters", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.EXPECT().FindAll(gomock.Any(), map[string]string{}).Return([]entities.Payment{}, nil)
		if _, err := uc.GetAllPayments(ctx, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestPaymentUseCase_UpdatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("logically equal update does not write", func(t *testing.T) {
		uc, _, cache := newTestUseCase(t)
		stored := paidPayment("PMT-1")
		cache.EXPECT().Get(gomock.Any(), "PMT-1").Return(stored, true, nil)
		// No repo.Update expectation: any write fails the test.

		same := stored
		same.Amount = stored.Amount + 1e-17
		got, err := uc.UpdatePayment(ctx, same)
		if err != nil || got.ID != "PMT-1" {
			t.Fatalf("unexpected result: %+v err=%v", got, err)
		}
	})

	t.Run("changed payment is written and cache refreshed", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		stored := paidPayment("PMT-1")
		changed := stored
		changed.Amount = 1500

		cache.EXPECT().Get(gomock.Any(), "PMT-1").Return(stored, true, nil)
		gomock.InOrder(
			cache.EXPECT().Generation(gomock.Any(), "PMT-1").Return(uint64(4), nil),
			repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(changed, nil),
			cache.EXPECT().Invalidate(gomock.Any(), "PMT-1").Return(uint64(5), nil),
			cache.EXPECT().PutIfUnchanged(gomock.Any(), "PMT-1", uint64(5), changed, DefaultPaymentCacheTTL).Return(true, nil),
		)

		got, err := uc.UpdatePayment(ctx, changed)
		if err != nil || got.Amount != 1500 {
			t.Fatalf("unexpected result: %+v err=%v", got, err)
		}
	})

	t.Run("interleaved writer leaves the snapshot uncached", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		stored := paidPayment("PMT-1")
		changed := stored
		changed.Amount = 1500

		cache.EXPECT().Get(gomock.Any(), "PMT-1").Return(stored, true, nil)
		cache.EXPECT().Generation(gomock.Any(), "PMT-1").Return(uint64(4), nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(changed, nil)
		// Another writer invalidated between our generation read and ours.
		cache.EXPECT().Invalidate(gomock.Any(), "PMT-1").Return(uint64(6), nil)

		got, err := uc.UpdatePayment(ctx, changed)
		if err != nil || got.Amount != 1500 {
			t.Fatalf("unexpected result: %+v err=%v", got, err)
		}
	})

	t.Run("surrounding whitespace in the id is trimmed", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		stored := paidPayment("PMT-1")
		changed := stored
		changed.ID = "  PMT-1 "
		changed.TransactionID = " TXN-9 "

		cache.EXPECT().Get(gomock.Any(), "PMT-1").Return(stored, true, nil)
		cache.EXPECT().Generation(gomock.Any(), "PMT-1").Return(uint64(0), nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, in entities.Payment) (entities.Payment, error) {
			if in.ID != "PMT-1" || in.TransactionID != "TXN-9" {
				t.Fatalf("expected trimmed identifiers, got %q %q", in.ID, in.TransactionID)
			}
			return in, nil
		})
		cache.EXPECT().Invalidate(gomock.Any(), "PMT-1").Return(uint64(1), nil)
		cache.EXPECT().PutIfUnchanged(gomock.Any(), "PMT-1", uint64(1), gomock.Any(), gomock.Any()).Return(true, nil)

		got, err := uc.UpdatePayment(ctx, changed)
		if err != nil || got.ID != "PMT-1" || got.TransactionID != "TXN-9" {
			t.Fatalf("unexpected result: %+v err=%v", got, err)
		}
	})

	t.Run("invalidate failure is a cache error", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		stored := paidPayment("PMT-1")
		changed := stored
		changed.TransactionID = "TXN-2"

		cache.EXPECT().Get(gomock.Any(), "PMT-1").Return(stored, true, nil)
		cache.EXPECT().Generation(gomock.Any(), "PMT-1").Return(uint64(0), nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(changed, nil)
		cache.EXPECT().Invalidate(gomock.Any(), "PMT-1").Return(uint64(0), errors.New("redis down"))

		_, err := uc.UpdatePayment(ctx, changed)
		if !errors.Is(err, ErrCache) {
			t.Fatalf("expected CacheError, got %v", err)
		}
	})

	t.Run("invalid payment never reaches the store", func(t *testing.T) {
		uc, _, _ := newTestUseCase(t)
		p := paidPayment("PMT-1")
		p.Amount = 0
		if _, err := uc.UpdatePayment(ctx, p); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestPaymentUseCase_UpdatePaymentStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("non-positive additional amount", func(t *testing.T) {
		uc, _, _ := newTestUseCase(t)
		zero := 0.0
		_, err := uc.UpdatePaymentStatus(ctx, "PMT-1", entities.PaymentStatusInstallment, &zero)
		var ie *InvalidInputError
		if !errors.As(err, &ie) || ie.Field != "additional_amount" {
			t.Fatalf("expected InvalidInput on additional_amount, got %v", err)
		}
	})

	t.Run("nonexistent payment", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		cache.EXPECT().Generation(gomock.Any(), "PMT-404").Return(uint64(0), nil)
		repo.EXPECT().UpdateStatus(gomock.Any(), "PMT-404", entities.PaymentStatusPaid, nil).Return(entities.Payment{}, interfaces.ErrPaymentNotFound)

		_, err := uc.UpdatePaymentStatus(ctx, "PMT-404", entities.PaymentStatusPaid, nil)
		var nf *NotFoundError
		if !errors.As(err, &nf) || *nf != (NotFoundError{Entity: "Payment", ID: "PMT-404"}) {
			t.Fatalf("expected NotFound{Payment, PMT-404}, got %v", err)
		}
	})

	t.Run("transitions are unrestricted", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		amount := 50.0
		back := installmentPayment("PMT-1", 50)
		repo.EXPECT().UpdateStatus(gomock.Any(), "PMT-1", entities.PaymentStatusInstallment, &amount).Return(back, nil)
		repo.EXPECT().UpdateStatus(gomock.Any(), "PMT-1", entities.PaymentStatusPaid, nil).Return(paidPayment("PMT-1"), nil)
		cache.EXPECT().Generation(gomock.Any(), "PMT-1").Return(uint64(0), nil).Times(2)
		cache.EXPECT().Invalidate(gomock.Any(), "PMT-1").Return(uint64(1), nil).Times(2)
		cache.EXPECT().PutIfUnchanged(gomock.Any(), "PMT-1", uint64(1), gomock.Any(), gomock.Any()).Return(true, nil).Times(2)

		if _, err := uc.UpdatePaymentStatus(ctx, "PMT-1", entities.PaymentStatusInstallment, &amount); err != nil {
			t.Fatalf("paid -> installment: %v", err)
		}
		if _, err := uc.UpdatePaymentStatus(ctx, "PMT-1", entities.PaymentStatusPaid, nil); err != nil {
			t.Fatalf("installment -> paid: %v", err)
		}
	})
}

func TestPaymentUseCase_DeletePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("missing payment is NotFound and nothing is deleted", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.EXPECT().FindByID(gomock.Any(), "PMT-404").Return(entities.Payment{}, interfaces.ErrPaymentNotFound)

		if err := uc.DeletePayment(ctx, "PMT-404"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})

	t.Run("storage failure during check is a database error", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.EXPECT().FindByID(gomock.Any(), "PMT-1").Return(entities.Payment{}, errors.New("disk full"))

		err := uc.DeletePayment(ctx, "PMT-1")
		if !errors.Is(err, ErrDatabase) || errors.Is(err, ErrNotFound) {
			t.Fatalf("expected DatabaseError, got %v", err)
		}
	})

	t.Run("success invalidates", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		gomock.InOrder(
			repo.EXPECT().FindByID(gomock.Any(), "PMT-1").Return(paidPayment("PMT-1"), nil),
			repo.EXPECT().Delete(gomock.Any(), "PMT-1").Return(nil),
			cache.EXPECT().Invalidate(gomock.Any(), "PMT-1").Return(uint64(1), nil),
		)
		if err := uc.DeletePayment(ctx, "PMT-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestPaymentUseCase_AddInstallment(t *testing.T) {
	ctx := context.Background()

	t.Run("non-positive amount", func(t *testing.T) {
		uc, _, _ := newTestUseCase(t)
		_, err := uc.AddInstallment(ctx, "PMT-1", -1)
		var ie *InvalidInputError
		if !errors.As(err, &ie) || ie.Field != "amount" {
			t.Fatalf("expected InvalidInput on amount, got %v", err)
		}
	})

	t.Run("paid payment is rejected without writing", func(t *testing.T) {
		uc, repo, _ := newTestUseCase(t)
		repo.EXPECT().FindByID(gomock.Any(), "PMT-1").Return(paidPayment("PMT-1"), nil)

		_, err := uc.AddInstallment(ctx, "PMT-1", 100)
		var ie *InvalidInputError
		if !errors.As(err, &ie) || ie.Field != "payment_status" {
			t.Fatalf("expected InvalidInput on payment_status, got %v", err)
		}
	})

	t.Run("success returns refreshed payment", func(t *testing.T) {
		uc, repo, cache := newTestUseCase(t)
		before := installmentPayment("PMT-1", 100)
		after := installmentPayment("PMT-1", 100, 200)

		gomock.InOrder(
			repo.EXPECT().FindByID(gomock.Any(), "PMT-1").Return(before, nil),
			repo.EXPECT().AddInstallment(gomock.Any(), "PMT-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, inst entities.Installment) error {
				if inst.Amount != 200 || inst.PaymentID != "PMT-1" || !inst.PaymentDate.Equal(fixedNow) {
					t.Fatalf("unexpected installment: %+v", inst)
				}
				return nil
			}),
			cache.EXPECT().Invalidate(gomock.Any(), "PMT-1").Return(uint64(1), nil),
			expectMiss(cache, "PMT-1", 1),
			repo.EXPECT().FindByID(gomock.Any(), "PMT-1").Return(after, nil),
			cache.EXPECT().PutIfUnchanged(gomock.Any(), "PMT-1", uint64(1), after, DefaultPaymentCacheTTL).Return(true, nil),
		)

		got, err := uc.AddInstallment(ctx, "PMT-1", 200)
		if err != nil || len(got.Installments) != 2 {
			t.Fatalf("unexpected result: %+v err=%v", got, err)
		}
	})
}

func TestPaymentUseCase_ClearCache(t *testing.T) {
	uc, _, cache := newTestUseCase(t)
	cache.EXPECT().Clear(gomock.Any()).Return(errors.New("boom"))
	if err := uc.ClearCache(context.Background()); KindOf(err) != KindCache {
		t.Fatalf("expected CacheError, got %v", err)
	}
}

func TestParsers(t *testing.T) {
	for in, want := range map[string]entities.PaymentStatus{
		"lunas": entities.PaymentStatusPaid, "Paid": entities.PaymentStatusPaid,
		"CICILAN": entities.PaymentStatusInstallment, "installment": entities.PaymentStatusInstallment,
	} {
		if got, err := ParsePaymentStatus(in); err != nil || got != want {
			t.Fatalf("status %q: got %q err=%v", in, got, err)
		}
	}
	if _, err := ParsePaymentStatus("refunded"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}

	if got, err := ParsePaymentMethod("credit_card"); err != nil || got != entities.PaymentMethodCreditCard {
		t.Fatalf("method: got %q err=%v", got, err)
	}
	if _, err := ParsePaymentMethod("credit card"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}
