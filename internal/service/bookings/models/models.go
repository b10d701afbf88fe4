package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/pkg/ptr"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID int64
	Status *string    // Фильтр по статусу (опционально)
	Date   *time.Time // Фильтр по дате (опционально)
}

// GetRestaurantBookingsRequest запрос на получение бронирований ресторана
type GetRestaurantBookingsRequest struct {
	Actor        domain.Actor
	RestaurantID int64
	BranchID     *int64     // Фильтр по филиалу (опционально)
	Date         *time.Time // Фильтр по дате (опционально)
	Status       *string    // Фильтр по статусу (опционально)
	ActiveOnly   bool       // Исключить completed и cancelled
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetRestaurantBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		RestaurantID: ptr.Ptr(r.RestaurantID),
		BranchID:     r.BranchID,
		Date:         r.Date,
		ActiveOnly:   r.ActiveOnly,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"userId"`
	BranchID     int64   `json:"branchId"`
	RestaurantID int64   `json:"restaurantId"`
	Date         string  `json:"date"`     // "2025-10-15"
	Time         string  `json:"time"`     // "19:00"
	EndTime      string  `json:"endTime"`  // "20:30"
	DateTime     string  `json:"dateTime"` // ISO 8601
	PartySize    int     `json:"partySize"`
	Status       string  `json:"status"`
	ArrivedAt    *string `json:"arrivedAt,omitempty"`
	CompletedAt  *string `json:"completedAt,omitempty"`
	CancelledAt  *string `json:"cancelledAt,omitempty"`
	CancelledBy  *string `json:"cancelledBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:           b.ID,
		UserID:       b.UserID,
		BranchID:     b.BranchID,
		RestaurantID: b.RestaurantID,
		Date:         b.BookingDate.Format(domain.DateFormat),
		Time:         b.StartTime.String(),
		EndTime:      b.EndTime().String(),
		DateTime:     b.DateTime().Format(time.RFC3339),
		PartySize:    b.PartySize,
		Status:       string(b.Status),
		ArrivedAt:    formatTime(b.ArrivedAt),
		CompletedAt:  formatTime(b.CompletedAt),
		CancelledAt:  formatTime(b.CancelledAt),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}

	if b.CancelledBy != nil {
		by := string(*b.CancelledBy)
		resp.CancelledBy = &by
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s, ok := domain.ParseBookingStatus(status)
	if !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// formatTime конвертирует время в строку ISO 8601
func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
