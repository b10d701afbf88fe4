package branch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/pkg/dbmetrics"
	"github.com/m04kA/SMC-TableReservation/pkg/psqlbuilder"
)

type DBExecutor = dbmetrics.DBExecutor

var branchColumns = []string{
	"id",
	"restaurant_id",
	"address",
	"city",
	"opening_time",
	"closing_time",
	"tables_count",
	"seats_count",
	"booking_interval_minutes",
	"reservation_duration_minutes",
	"created_at",
	"updated_at",
}

// Repository репозиторий филиалов (только чтение: филиалами управляет другой сервис)
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает филиал по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate блокирует строку филиала до конца транзакции.
// Все создания бронирований одного филиала выстраиваются в очередь на этой блокировке.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Branch, error) {
	return r.get(ctx, id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) get(ctx context.Context, id int64, forUpdate bool) (*domain.Branch, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(branchColumns...).
		From("branches").
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		b                    domain.Branch
		createdAt, updatedAt sql.NullTime
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&b.RestaurantID,
		&b.Address,
		&b.City,
		&b.OpeningTime,
		&b.ClosingTime,
		&b.TablesCount,
		&b.SeatsCount,
		&b.BookingIntervalMinutes,
		&b.ReservationDurationMinutes,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBranchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan branch: %v", ErrScanRow, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}
