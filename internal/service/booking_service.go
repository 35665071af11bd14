package service

import (
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wheelhub/internal/db"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound       = errors.New("booking not found")
	ErrBookingDatesInvalid   = errors.New("booking dates are invalid")
	ErrBookingCustomerFields = errors.New("customer name and email are required")
	ErrVehicleUnavailable    = errors.New("vehicle is not available")
	ErrBookingOverlap        = errors.New("vehicle is already booked for these dates")
	ErrBookingStateInvalid   = errors.New("booking status does not allow this change")
	ErrBookingStatusInvalid  = errors.New("invalid booking status")
)

// activeBookingStatuses block the vehicle for their date range.
var activeBookingStatuses = []string{db.BookingStatusPending, db.BookingStatusPaid}

// BookingService 负责预订的创建、支付回调与后台管理。
type BookingService struct {
	db  *gorm.DB
	now func() time.Time
}

// BookingInput captures a storefront booking request. VehicleSlug is used
// when VehicleID is zero.
type BookingInput struct {
	VehicleID     uint
	VehicleSlug   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	StartDate     time.Time
	EndDate       time.Time
}

// BookingFilter describes filters for the admin booking list.
type BookingFilter struct {
	Status    string
	VehicleID uint
	Page      int
	PerPage   int
}

// BookingListResult aggregates paginated booking results.
type BookingListResult struct {
	Items []db.Booking
	Paging
}

// NewBookingService creates a BookingService instance.
func NewBookingService(gdb *gorm.DB) *BookingService {
	return &BookingService{db: gdb, now: time.Now}
}

// SetClock overrides the time source, mainly for tests.
func (s *BookingService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Create validates and stores a pending booking priced from the vehicle's daily rate.
func (s *BookingService) Create(input BookingInput) (*db.Booking, error) {
	name := strings.TrimSpace(input.CustomerName)
	email := strings.TrimSpace(input.CustomerEmail)
	if name == "" || email == "" {
		return nil, ErrBookingCustomerFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrBookingCustomerFields
	}

	start, end := input.StartDate.UTC(), input.EndDate.UTC()
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, ErrBookingDatesInvalid
	}
	if start.Before(startOfDay(s.now().UTC())) {
		return nil, ErrBookingDatesInvalid
	}

	var booking db.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		vehicle, err := findBookableVehicle(tx, input)
		if err != nil {
			return err
		}
		if !vehicle.Available {
			return ErrVehicleUnavailable
		}

		if err := ensureNoOverlap(tx, vehicle.ID, start, end, 0); err != nil {
			return err
		}

		days := rentalDays(start, end)
		booking = db.Booking{
			Reference:     uuid.NewString(),
			VehicleID:     vehicle.ID,
			CustomerName:  name,
			CustomerEmail: email,
			CustomerPhone: strings.TrimSpace(input.CustomerPhone),
			StartDate:     start,
			EndDate:       end,
			Days:          days,
			TotalAmount:   int64(days) * vehicle.DailyRate,
			Status:        db.BookingStatusPending,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		booking.Vehicle = *vehicle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Get fetches a booking by id.
func (s *BookingService) Get(id uint) (*db.Booking, error) {
	var booking db.Booking
	if err := s.db.Preload("Vehicle").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// GetByReference fetches a booking by its public reference.
func (s *BookingService) GetByReference(reference string) (*db.Booking, error) {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return nil, ErrBookingNotFound
	}

	var booking db.Booking
	if err := s.db.Preload("Vehicle").Where("reference = ?", ref).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// List returns bookings matching the filter, newest first.
func (s *BookingService) List(filter BookingFilter) (BookingListResult, error) {
	result := BookingListResult{Paging: newPaging(filter.Page, filter.PerPage, 20)}

	query := s.db.Model(&db.Booking{})
	if status := strings.ToLower(strings.TrimSpace(filter.Status)); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.VehicleID != 0 {
		query = query.Where("vehicle_id = ?", filter.VehicleID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return result, fmt.Errorf("count bookings: %w", err)
	}
	result.setTotal(total)

	if err := query.Preload("Vehicle").
		Order("created_at desc").
		Order("id desc").
		Scopes(result.scope).
		Find(&result.Items).Error; err != nil {
		return result, fmt.Errorf("list bookings: %w", err)
	}
	return result, nil
}

// CompletePayment marks a pending booking as paid. Repeating the call with
// the same payment reference is a no-op.
func (s *BookingService) CompletePayment(reference, paymentRef string) (*db.Booking, error) {
	booking, err := s.GetByReference(reference)
	if err != nil {
		return nil, err
	}

	paymentRef = strings.TrimSpace(paymentRef)
	switch booking.Status {
	case db.BookingStatusPaid:
		if paymentRef == "" || paymentRef == booking.PaymentRef {
			return booking, nil
		}
		return nil, ErrBookingStateInvalid
	case db.BookingStatusPending:
	default:
		return nil, ErrBookingStateInvalid
	}

	paidAt := s.now().UTC()
	result := s.db.Model(&db.Booking{}).
		Where("id = ? AND status = ?", booking.ID, db.BookingStatusPending).
		Updates(map[string]interface{}{
			"status":      db.BookingStatusPaid,
			"payment_ref": paymentRef,
			"paid_at":     paidAt,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("complete payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrBookingStateInvalid
	}

	return s.GetByReference(booking.Reference)
}

// CancelPayment cancels a pending booking after an aborted checkout.
func (s *BookingService) CancelPayment(reference string) (*db.Booking, error) {
	booking, err := s.GetByReference(reference)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case db.BookingStatusCancelled:
		return booking, nil
	case db.BookingStatusPending:
	default:
		return nil, ErrBookingStateInvalid
	}

	result := s.db.Model(&db.Booking{}).
		Where("id = ? AND status = ?", booking.ID, db.BookingStatusPending).
		Update("status", db.BookingStatusCancelled)
	if result.Error != nil {
		return nil, fmt.Errorf("cancel payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrBookingStateInvalid
	}

	return s.GetByReference(booking.Reference)
}

// UpdateStatus lets administrators move a booking to any known status.
// Reactivating a cancelled or completed booking is refused when another
// active booking now holds the same vehicle and dates.
func (s *BookingService) UpdateStatus(id uint, status string) (*db.Booking, error) {
	normalized := normalizeBookingStatus(status)
	if normalized == "" {
		return nil, ErrBookingStatusInvalid
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var booking db.Booking
		if err := tx.First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if isActiveBookingStatus(normalized) && !isActiveBookingStatus(booking.Status) {
			if err := ensureNoOverlap(tx, booking.VehicleID, booking.StartDate, booking.EndDate, booking.ID); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{"status": normalized}
		if normalized == db.BookingStatusPaid && booking.PaidAt == nil {
			updates["paid_at"] = s.now().UTC()
		}
		if err := tx.Model(&db.Booking{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("update booking status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(id)
}

// Delete removes a booking.
func (s *BookingService) Delete(id uint) error {
	booking, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Delete(&db.Booking{}, booking.ID).Error
}

// ensureNoOverlap fails with ErrBookingOverlap when another active booking of
// the vehicle intersects [start, end). excludeID skips the booking itself.
func ensureNoOverlap(tx *gorm.DB, vehicleID uint, start, end time.Time, excludeID uint) error {
	query := tx.Model(&db.Booking{}).
		Where("vehicle_id = ? AND status IN ?", vehicleID, activeBookingStatuses).
		Where("start_date < ? AND end_date > ?", end, start)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var overlapping int64
	if err := query.Count(&overlapping).Error; err != nil {
		return fmt.Errorf("check overlapping bookings: %w", err)
	}
	if overlapping > 0 {
		return ErrBookingOverlap
	}
	return nil
}

func isActiveBookingStatus(status string) bool {
	for _, active := range activeBookingStatuses {
		if status == active {
			return true
		}
	}
	return false
}

func findBookableVehicle(tx *gorm.DB, input BookingInput) (*db.Vehicle, error) {
	var vehicle db.Vehicle
	query := tx.Model(&db.Vehicle{})
	switch {
	case input.VehicleID != 0:
		query = query.Where("id = ?", input.VehicleID)
	case strings.TrimSpace(input.VehicleSlug) != "":
		query = query.Where("slug = ?", strings.TrimSpace(input.VehicleSlug))
	default:
		return nil, ErrVehicleNotFound
	}

	if err := query.First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

func rentalDays(start, end time.Time) int {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func normalizeBookingStatus(status string) string {
	switch s := strings.ToLower(strings.TrimSpace(status)); s {
	case db.BookingStatusPending, db.BookingStatusPaid, db.BookingStatusCancelled, db.BookingStatusCompleted:
		return s
	default:
		return ""
	}
}
