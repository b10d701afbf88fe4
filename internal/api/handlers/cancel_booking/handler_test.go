package cancel_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TableReservation/internal/api/handlers"
	"github.com/m04kA/SMC-TableReservation/internal/api/middleware"
	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/internal/service/bookings"
	"github.com/m04kA/SMC-TableReservation/internal/service/bookings/models"
	"github.com/m04kA/SMC-TableReservation/pkg/logger"
)

type fakeService struct {
	gotID    int64
	gotActor domain.Actor
	err      error
}

func (f *fakeService) Cancel(_ context.Context, bookingID int64, actor domain.Actor) (*models.BookingResponse, error) {
	f.gotID, f.gotActor = bookingID, actor
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: bookingID, Status: string(domain.StatusCancelled)}, nil
}

func serve(svc BookingService, actor *domain.Actor, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/bookings/{bookingId}/cancel", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodPost)

	r := httptest.NewRequest(http.MethodPost, target, nil)
	if actor != nil {
		r = r.WithContext(middleware.WithActor(r.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	return rec
}

func TestHandle_Success(t *testing.T) {
	svc := &fakeService{}
	actor := domain.Actor{ID: 5, Kind: domain.ActorUser}

	rec := serve(svc, &actor, "/bookings/12/cancel")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(12), svc.gotID)
	assert.Equal(t, actor, svc.gotActor)

	var body struct {
		Message string                 `json:"message"`
		Data    models.BookingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Message)
	assert.Equal(t, "cancelled", body.Data.Status)
}

func TestHandle_Errors(t *testing.T) {
	actor := &domain.Actor{ID: 5, Kind: domain.ActorUser}

	tests := []struct {
		name       string
		actor      *domain.Actor
		target     string
		err        error
		wantStatus int
		wantKind   string
	}{
		{name: "bad id", actor: actor, target: "/bookings/x/cancel", wantStatus: http.StatusBadRequest, wantKind: handlers.KindInvalidInput},
		{name: "no identity", target: "/bookings/1/cancel", wantStatus: http.StatusUnauthorized, wantKind: handlers.KindUnauthenticated},
		{name: "not found", actor: actor, target: "/bookings/1/cancel", err: bookings.ErrBookingNotFound, wantStatus: http.StatusNotFound, wantKind: handlers.KindNotFound},
		{name: "forbidden", actor: actor, target: "/bookings/1/cancel", err: bookings.ErrForbidden, wantStatus: http.StatusForbidden, wantKind: handlers.KindForbidden},
		{name: "invalid transition", actor: actor, target: "/bookings/1/cancel", err: bookings.ErrInvalidTransition, wantStatus: http.StatusConflict, wantKind: handlers.KindInvalidTransition},
		{name: "internal", actor: actor, target: "/bookings/1/cancel", err: bookings.ErrInternal, wantStatus: http.StatusInternalServerError, wantKind: handlers.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, tt.actor, tt.target)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Error)
		})
	}
}
