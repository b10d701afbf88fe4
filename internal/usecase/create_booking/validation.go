package create_booking

import (
	"fmt"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.BranchID <= 0 {
		return fmt.Errorf("%w: branchID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: start time: %v", ErrInvalidInput, err)
	}

	if req.PartySize < domain.MinPartySize {
		return fmt.Errorf("%w: partySize must be at least %d", ErrInvalidInput, domain.MinPartySize)
	}

	return nil
}
