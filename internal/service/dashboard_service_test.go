package service

import (
	"testing"

	"github.com/wheelhub/internal/db"
)

func TestDashboardServiceSummary(t *testing.T) {
	gdb, bookings, vehicle := setupBookingFixture(t)

	paid, err := bookings.Create(validBookingInput(vehicle.ID, 1, 3))
	if err != nil {
		t.Fatalf("create paid booking: %v", err)
	}
	if _, err := bookings.CompletePayment(paid.Reference, "pay_1"); err != nil {
		t.Fatalf("complete payment: %v", err)
	}
	if _, err := bookings.Create(validBookingInput(vehicle.ID, 5, 6)); err != nil {
		t.Fatalf("create pending booking: %v", err)
	}

	if _, err := NewTrackerPurchaseService(gdb).Create(TrackerPurchaseInput{DeviceModel: "GT06N", Quantity: 2, UnitPrice: 1000}); err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if _, err := NewUserService(gdb).Create(UserInput{Username: "root", Password: "pw", Role: db.RoleAdmin}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	summary, err := NewDashboardService(gdb).Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.VehicleTypes != 1 || summary.Vehicles != 1 || summary.AvailableVehicles != 1 {
		t.Fatalf("unexpected catalog counts: %+v", summary)
	}
	if summary.Bookings != 2 {
		t.Fatalf("expected 2 bookings, got %d", summary.Bookings)
	}
	if summary.BookingsByStatus[db.BookingStatusPaid] != 1 || summary.BookingsByStatus[db.BookingStatusPending] != 1 {
		t.Fatalf("unexpected status counts: %v", summary.BookingsByStatus)
	}
	if summary.BookingsByStatus[db.BookingStatusCancelled] != 0 {
		t.Fatalf("expected zero cancelled bookings")
	}
	if summary.PaidRevenue != paid.TotalAmount {
		t.Fatalf("expected revenue %d, got %d", paid.TotalAmount, summary.PaidRevenue)
	}
	if summary.Users != 1 || summary.TrackerPurchases != 1 || summary.TrackerSpend != 2000 {
		t.Fatalf("unexpected ops counts: %+v", summary)
	}
}
