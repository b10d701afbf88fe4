package create_booking

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	createBooking "github.com/m04kA/SMC-TableReservation/internal/usecase/create_booking"
	"github.com/m04kA/SMC-TableReservation/pkg/types"
)

var (
	errInvalidDateTime = errors.New("date must be an ISO 8601 datetime")
	errNotMinuteAlign  = errors.New("date must not carry seconds")
)

// Допустимые форматы поля date; без смещения время трактуется как UTC,
// со смещением переводится в UTC до разбиения на дату и время
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	BranchID  int64  `json:"branchId"`
	Date      string `json:"date"` // "2025-10-15T19:00:00Z"
	PartySize int    `json:"partySize"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID             int64  `json:"id"`
	UserID         int64  `json:"userId"`
	BranchID       int64  `json:"branchId"`
	RestaurantID   int64  `json:"restaurantId"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	EndTime        string `json:"endTime"`
	PartySize      int    `json:"partySize"`
	Status         string `json:"status"`
	RemainingSeats int    `json:"remainingSeats"`
	CreatedAt      string `json:"createdAt"`
}

// ParseDateTime разбирает ISO datetime на дату и время слота в UTC
func ParseDateTime(s string) (time.Time, types.TimeString, error) {
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		t = t.UTC()
		if t.Second() != 0 || t.Nanosecond() != 0 {
			return time.Time{}, "", errNotMinuteAlign
		}
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return date, types.NewTimeString(t), nil
	}
	return time.Time{}, "", errInvalidDateTime
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	date, startTime, err := ParseDateTime(r.Date)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		UserID:    userID,
		BranchID:  r.BranchID,
		Date:      date,
		StartTime: startTime,
		PartySize: r.PartySize,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:             resp.ID,
		UserID:         resp.UserID,
		BranchID:       resp.BranchID,
		RestaurantID:   resp.RestaurantID,
		Date:           resp.BookingDate.Format(domain.DateFormat),
		Time:           resp.StartTime.String(),
		EndTime:        resp.EndTime.String(),
		PartySize:      resp.PartySize,
		Status:         resp.Status,
		RemainingSeats: resp.RemainingSeats,
		CreatedAt:      resp.CreatedAt.Format(time.RFC3339),
	}
}
