package get_restaurant_bookings

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров branchId, status, date, activeOnly
func ToServiceRequest(actor domain.Actor, restaurantID int64, query url.Values) (*models.GetRestaurantBookingsRequest, error) {
	req := &models.GetRestaurantBookingsRequest{
		Actor:        actor,
		RestaurantID: restaurantID,
	}

	// Парсим branchId если указан
	if branchIDStr := query.Get("branchId"); branchIDStr != "" {
		branchID, err := strconv.ParseInt(branchIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid branchId: %w", err)
		}
		req.BranchID = &branchID
	}

	// Парсим status если указан
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	// Парсим date если указана
	if dateStr := query.Get("date"); dateStr != "" {
		date, err := time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		req.Date = &date
	}

	// Парсим activeOnly если указан
	if activeOnlyStr := query.Get("activeOnly"); activeOnlyStr != "" {
		activeOnly, err := strconv.ParseBool(activeOnlyStr)
		if err != nil {
			return nil, fmt.Errorf("invalid activeOnly value: %w", err)
		}
		req.ActiveOnly = activeOnly
	}

	return req, nil
}
