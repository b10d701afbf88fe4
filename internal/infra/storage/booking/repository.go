package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/pkg/dbmetrics"
	"github.com/m04kA/SMC-TableReservation/pkg/psqlbuilder"
)

const tableBookings = "bookings"

var bookingColumns = []string{
	"id",
	"user_id",
	"branch_id",
	"restaurant_id",
	"booking_date",
	"start_time",
	"party_size",
	"status",
	"duration_minutes",
	"arrived_at",
	"completed_at",
	"cancelled_at",
	"cancelled_by",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableBookings).
		Columns(
			"user_id",
			"branch_id",
			"restaurant_id",
			"booking_date",
			"start_time",
			"party_size",
			"status",
			"duration_minutes",
		).
		Values(
			booking.UserID,
			booking.BranchID,
			booking.RestaurantID,
			booking.BookingDate,
			booking.StartTime,
			booking.PartySize,
			booking.Status,
			booking.DurationMinutes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate получает бронирование с блокировкой строки до конца транзакции.
// Вне транзакции ведет себя как GetByID.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getByID(ctx, id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) getByID(ctx context.Context, id int64, forUpdate bool) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// List получает бронирования по фильтру.
//
// Для конкретной даты сортирует по времени начала, иначе сначала новые.
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).From(tableBookings)

	if filter.RestaurantID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"restaurant_id": *filter.RestaurantID})
	}
	if filter.BranchID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"branch_id": *filter.BranchID})
	}
	if filter.UserID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.Date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"booking_date": domain.DateOnly(*filter.Date)})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if filter.ActiveOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)})
	}

	if filter.Date != nil {
		selectBuilder = selectBuilder.OrderBy("start_time ASC", "id ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("booking_date DESC", "start_time DESC", "id DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListForCapacity получает нетерминальные бронирования филиала на дату.
// Используется расчетом свободных мест; внутри транзакции вызывается после блокировки филиала.
func (r *Repository) ListForCapacity(ctx context.Context, branchID int64, date time.Time) ([]*domain.Booking, error) {
	return r.List(ctx, domain.BookingsFilter{
		BranchID:   &branchID,
		Date:       &date,
		ActiveOnly: true,
	})
}

// UpdateStatus сохраняет статус и отметки времени жизненного цикла
func (r *Repository) UpdateStatus(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var cancelledBy interface{}
	if booking.CancelledBy != nil {
		cancelledBy = string(*booking.CancelledBy)
	}

	query, args, err := psqlbuilder.Update(tableBookings).
		Set("status", booking.Status).
		Set("arrived_at", booking.ArrivedAt).
		Set("completed_at", booking.CompletedAt).
		Set("cancelled_at", booking.CancelledAt).
		Set("cancelled_by", cancelledBy).
		Set("updated_at", booking.UpdatedAt).
		Where(squirrel.Eq{"id": booking.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		booking              domain.Booking
		cancelledBy          sql.NullString
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.BranchID,
		&booking.RestaurantID,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.PartySize,
		&booking.Status,
		&booking.DurationMinutes,
		&booking.ArrivedAt,
		&booking.CompletedAt,
		&booking.CancelledAt,
		&cancelledBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cancelledBy.Valid {
		kind := domain.ActorKind(cancelledBy.String)
		booking.CancelledBy = &kind
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
