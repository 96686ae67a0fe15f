//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/Sid145V/medical-assistant/internal/domain/identity"
	"github.com/Sid145V/medical-assistant/internal/domain/pharmacy"
	"github.com/Sid145V/medical-assistant/internal/seed"
)

// newPatient signs up a fresh patient with no saved address.
func newPatient(t *testing.T, ctx context.Context, s *stack) *identity.User {
	t.Helper()
	suffix := uuid.New().String()[:8]
	sess, err := s.identity.Signup(ctx, &identity.SignupRequest{
		Role:     identity.RolePatient,
		Password: "secret123",
		UserUpdate: identity.UserUpdate{
			FirstName: str("Test"),
			LastName:  str("Patient"),
			Age:       num(30),
			Gender:    str("female"),
			Location:  str("Kolar"),
			Email:     str(fmt.Sprintf("patient-%s@test.com", suffix)),
		},
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	return sess.User
}

func testAddress() *identity.Address {
	return &identity.Address{
		FullName: "Test Patient",
		Building: "12",
		Street:   "MG Road",
		City:     "Kolar",
		Pincode:  "563101",
		Phone:    "9000000000",
	}
}

func TestOrder_SavesAddressWithOrder(t *testing.T) {
	ctx := context.Background()
	s := testStack(t)
	patient := newPatient(t, ctx, s)

	_, err := s.pharmacy.PlaceOrder(ctx, &pharmacy.PlaceOrderRequest{
		PatientID:     patient.ID,
		MedicineID:    seed.ID("med-2"),
		Quantity:      2,
		PaymentMethod: pharmacy.PaymentCashOnDelivery,
	})
	if !errors.Is(err, pharmacy.ErrAddressRequired) {
		t.Fatalf("expected ErrAddressRequired without a saved address, got %v", err)
	}

	res, err := s.pharmacy.PlaceOrder(ctx, &pharmacy.PlaceOrderRequest{
		PatientID:     patient.ID,
		MedicineID:    seed.ID("med-2"),
		Quantity:      3,
		PaymentMethod: pharmacy.PaymentUPI,
		UTR:           str("ABCDEF123456"),
		Address:       testAddress(),
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if res.Order.TotalPrice != 37.5 {
		t.Errorf("expected total 37.5, got %v", res.Order.TotalPrice)
	}
	if res.Order.ShopID != seed.ID("shop-1") {
		t.Errorf("expected order to belong to the seeded shop, got %s", res.Order.ShopID)
	}
	if res.UpdatedPatient == nil || res.UpdatedPatient.Address == nil {
		t.Fatal("expected updated patient with address")
	}

	stored, err := s.identity.GetUser(ctx, patient.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.Address == nil || stored.Address.City != "Kolar" {
		t.Errorf("expected saved address, got %+v", stored.Address)
	}

	// The saved address now satisfies later orders.
	res, err = s.pharmacy.PlaceOrder(ctx, &pharmacy.PlaceOrderRequest{
		PatientID:     patient.ID,
		MedicineID:    seed.ID("med-1"),
		Quantity:      1,
		PaymentMethod: pharmacy.PaymentCashOnDelivery,
	})
	if err != nil {
		t.Fatalf("second order: %v", err)
	}
	if res.UpdatedPatient != nil {
		t.Error("expected no updated patient when no address was supplied")
	}

	orders, total, err := s.pharmacy.ListOrdersForPatient(ctx, patient.ID, 10, 0)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if total != 2 || len(orders) != 2 {
		t.Errorf("expected 2 orders, got %d", total)
	}
}

func TestOrder_RejectedOrderKeepsProfile(t *testing.T) {
	ctx := context.Background()
	s := testStack(t)
	patient := newPatient(t, ctx, s)

	med, err := s.pharmacy.AddMedicine(ctx, &pharmacy.AddMedicineRequest{
		ShopID:           seed.ID("shop-1"),
		Name:             "Vitamin D3",
		Price:            4.25,
		MinOrderQuantity: 5,
		Image:            "https://picsum.photos/seed/d3/300",
	})
	if err != nil {
		t.Fatalf("add medicine: %v", err)
	}

	_, err = s.pharmacy.PlaceOrder(ctx, &pharmacy.PlaceOrderRequest{
		PatientID:     patient.ID,
		MedicineID:    med.ID,
		Quantity:      2,
		PaymentMethod: pharmacy.PaymentCashOnDelivery,
		Address:       testAddress(),
	})
	if !errors.Is(err, pharmacy.ErrBelowMinimumQuantity) {
		t.Fatalf("expected ErrBelowMinimumQuantity, got %v", err)
	}

	stored, err := s.identity.GetUser(ctx, patient.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.Address != nil {
		t.Errorf("expected no address after a rejected order, got %+v", stored.Address)
	}
}

func TestOrder_ShopOrdersAndCatalog(t *testing.T) {
	ctx := context.Background()
	s := testStack(t)
	shop := seed.ID("shop-1")

	meds, total, err := s.pharmacy.ListMedicinesByShop(ctx, shop, 0, 0)
	if err != nil {
		t.Fatalf("list medicines: %v", err)
	}
	if total < 2 || len(meds) < 2 {
		t.Errorf("expected the seeded medicines, got %d", total)
	}

	found, _, err := s.pharmacy.ListMedicines(ctx, pharmacy.MedicineFilter{Query: "cough"}, 0, 0)
	if err != nil {
		t.Fatalf("search medicines: %v", err)
	}
	if len(found) == 0 {
		t.Error("expected a case-insensitive name match for cough")
	}

	none, _, err := s.pharmacy.ListMedicinesByShop(ctx, uuid.New(), 0, 0)
	if err != nil {
		t.Fatalf("list medicines for unknown shop: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no medicines for an unknown shop, got %d", len(none))
	}
}
