package get_availability

import (
	"time"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	getAvailability "github.com/m04kA/SMC-TableReservation/internal/usecase/get_availability"
)

// AvailabilityResponse "HH:MM" -> свободные места; encoding/json сортирует ключи, порядок совпадает с хронологическим
type AvailabilityResponse map[string]int

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) AvailabilityResponse {
	return AvailabilityResponse(resp.Remaining())
}

// ToUseCaseRequest создает запрос use case из параметров пути и query
func ToUseCaseRequest(branchID int64, dateStr string) (*getAvailability.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailability.Request{
		BranchID: branchID,
		Date:     date,
	}, nil
}
