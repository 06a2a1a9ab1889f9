package entities

import (
	"strings"
	"testing"
	"time"
)

func TestPaymentIDs(t *testing.T) {
	if id := NewPaymentID(); !strings.HasPrefix(id, "PMT-") || len(id) != len("PMT-")+36 {
		t.Fatalf("unexpected payment id: %s", id)
	}
	if id := NewInstallmentID(); !strings.HasPrefix(id, "INST-") || len(id) != len("INST-")+36 {
		t.Fatalf("unexpected installment id: %s", id)
	}
	if NewPaymentID() == NewPaymentID() {
		t.Fatalf("expected unique ids")
	}
}

func TestPaymentStatus(t *testing.T) {
	if !PaymentStatusInstallment.AllowsInstallments() {
		t.Fatalf("installment status must allow installments")
	}
	if PaymentStatusPaid.AllowsInstallments() {
		t.Fatalf("paid status must not allow installments")
	}
	if PaymentStatus("paid").Valid() {
		t.Fatalf("status codes are case sensitive at the entity level")
	}
	for _, m := range PaymentMethods() {
		if !m.Valid() {
			t.Fatalf("method %s should be valid", m)
		}
	}
	if PaymentMethod("CHEQUE").Valid() {
		t.Fatalf("unexpected valid method")
	}
}

func TestPayment_Clone(t *testing.T) {
	due := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	p := Payment{
		ID:           "PMT-1",
		DueDate:      &due,
		Installments: []Installment{{ID: "INST-1", PaymentID: "PMT-1", Amount: 10}},
	}

	c := p.Clone()
	c.Installments[0].Amount = 99
	*c.DueDate = due.Add(time.Hour)

	if p.Installments[0].Amount != 10 {
		t.Fatalf("clone shares installments")
	}
	if !p.DueDate.Equal(due) {
		t.Fatalf("clone shares due date")
	}

	empty := Payment{ID: "PMT-2"}.Clone()
	if empty.Installments == nil || len(empty.Installments) != 0 {
		t.Fatalf("expected empty non-nil installments, got %#v", empty.Installments)
	}
}

func TestPayment_Totals(t *testing.T) {
	p := Payment{
		Amount: 1000,
		Installments: []Installment{
			{Amount: 0.1}, {Amount: 0.2}, {Amount: 299.7},
		},
	}
	if got := p.InstallmentsTotal().String(); got != "300" {
		t.Fatalf("expected exact total 300, got %s", got)
	}
	if got := p.Outstanding().String(); got != "700" {
		t.Fatalf("expected outstanding 700, got %s", got)
	}

	// Installments may exceed the amount; this is reported, not rejected.
	over := Payment{Amount: 100, Installments: []Installment{{Amount: 150}}}
	if !over.Outstanding().IsNegative() {
		t.Fatalf("expected negative outstanding, got %s", over.Outstanding())
	}
}

func TestSortInstallments(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	items := []Installment{
		{ID: "c", PaymentDate: base.Add(2 * time.Hour)},
		{ID: "b", PaymentDate: base},
		{ID: "a", PaymentDate: base},
	}
	SortInstallments(items)
	got := items[0].ID + items[1].ID + items[2].ID
	if got != "abc" {
		t.Fatalf("unexpected order: %s", got)
	}
}
