package create_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TableReservation/internal/api/handlers"
	"github.com/m04kA/SMC-TableReservation/internal/api/middleware"
	"github.com/m04kA/SMC-TableReservation/internal/domain"
	createBooking "github.com/m04kA/SMC-TableReservation/internal/usecase/create_booking"
	"github.com/m04kA/SMC-TableReservation/pkg/logger"
	"github.com/m04kA/SMC-TableReservation/pkg/types"
)

type fakeUseCase struct {
	got *createBooking.Request
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &createBooking.Response{
		ID:             1,
		UserID:         req.UserID,
		BranchID:       req.BranchID,
		RestaurantID:   77,
		BookingDate:    req.Date,
		StartTime:      req.StartTime,
		EndTime:        types.MustTimeString("13:30"),
		PartySize:      req.PartySize,
		Status:         string(domain.StatusConfirmed),
		RemainingSeats: 4,
		CreatedAt:      time.Date(2025, 8, 10, 10, 0, 0, 0, time.UTC),
	}, nil
}

func post(uc CreateBookingUseCase, actor *domain.Actor, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	if actor != nil {
		r = r.WithContext(middleware.WithActor(r.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	NewHandler(uc, logger.NewNop()).Handle(rec, r)
	return rec
}

var user = &domain.Actor{ID: 5, Kind: domain.ActorUser}

func TestHandle_Created(t *testing.T) {
	uc := &fakeUseCase{}
	rec := post(uc, user, `{"branchId":1,"date":"2025-08-11T12:00:00Z","partySize":6}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, int64(5), uc.got.UserID)
	assert.Equal(t, types.MustTimeString("12:00"), uc.got.StartTime)
	assert.Equal(t, "2025-08-11", uc.got.Date.Format(domain.DateFormat))

	var body BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "12:00", body.Time)
	assert.Equal(t, "13:30", body.EndTime)
	assert.Equal(t, 4, body.RemainingSeats)
	assert.Equal(t, "confirmed", body.Status)
}

func TestHandle_Errors(t *testing.T) {
	restaurant := &domain.Actor{ID: 77, Kind: domain.ActorRestaurant}
	valid := `{"branchId":1,"date":"2025-08-11T12:00:00Z","partySize":5}`

	tests := []struct {
		name       string
		actor      *domain.Actor
		body       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{name: "no identity", body: valid, wantStatus: http.StatusUnauthorized, wantKind: handlers.KindUnauthenticated},
		{name: "restaurant cannot book", actor: restaurant, body: valid, wantStatus: http.StatusForbidden, wantKind: handlers.KindForbidden},
		{name: "malformed body", actor: user, body: `{"branchId":`, wantStatus: http.StatusBadRequest, wantKind: handlers.KindInvalidInput},
		{name: "date without time", actor: user, body: `{"branchId":1,"date":"2025-08-11","partySize":2}`, wantStatus: http.StatusBadRequest, wantKind: handlers.KindInvalidInput},
		{name: "capacity exceeded", actor: user, body: valid, err: createBooking.ErrCapacityExceeded, wantStatus: http.StatusConflict, wantKind: handlers.KindCapacityExceeded},
		{name: "invalid slot", actor: user, body: valid, err: createBooking.ErrInvalidSlot, wantStatus: http.StatusBadRequest, wantKind: handlers.KindInvalidSlot},
		{name: "branch not found", actor: user, body: valid, err: createBooking.ErrBranchNotFound, wantStatus: http.StatusNotFound, wantKind: handlers.KindBranchNotFound},
		{name: "invalid input", actor: user, body: valid, err: createBooking.ErrInvalidInput, wantStatus: http.StatusBadRequest, wantKind: handlers.KindInvalidInput},
		{name: "internal", actor: user, body: valid, err: createBooking.ErrInternal, wantStatus: http.StatusInternalServerError, wantKind: handlers.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(&fakeUseCase{err: tt.err}, tt.actor, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Error)
		})
	}
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		in       string
		wantDate string
		wantTime string
		wantErr  bool
	}{
		{in: "2025-08-11T19:30:00Z", wantDate: "2025-08-11", wantTime: "19:30"},
		{in: "2025-08-11T19:30:00+03:00", wantDate: "2025-08-11", wantTime: "16:30"},
		{in: "2025-08-11T01:30:00+03:00", wantDate: "2025-08-10", wantTime: "22:30"},
		{in: "2025-08-09T23:30:00-10:00", wantDate: "2025-08-10", wantTime: "09:30"},
		{in: "2025-08-11T19:30", wantDate: "2025-08-11", wantTime: "19:30"},
		{in: "2025-08-11T19:30:15Z", wantErr: true},
		{in: "19:30", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			date, start, err := ParseDateTime(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.UTC, date.Location())
			assert.Equal(t, tt.wantDate, date.Format(domain.DateFormat))
			assert.Equal(t, tt.wantTime, start.String())
		})
	}
}
