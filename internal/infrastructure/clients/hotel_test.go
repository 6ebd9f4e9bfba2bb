package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelops/internal/domain/registry"
	"hotelops/internal/fault"
	"hotelops/internal/infrastructure/resilience"
)

func testCaller() *resilience.Caller {
	return resilience.New("hotel-test", resilience.Config{
		Timeout:             time.Second,
		MaxRetries:          1,
		ConsecutiveFailures: 100,
		OpenInterval:        time.Minute,
	})
}

func TestHotelClientGetRoom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/hotel/rooms/room-101", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"room-101","roomNumber":"101","pricePerNight":"100.00","capacity":2,"status":"AVAILABLE"}`))
	}))
	defer srv.Close()

	client := NewHotelClient(srv.URL, srv.Client(), testCaller())

	room, err := client.GetRoom(context.Background(), "room-101")
	require.NoError(t, err)
	assert.Equal(t, "room-101", room.ID)
	assert.Equal(t, "101", room.Number)
	assert.True(t, room.PricePerUnit.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, registry.StatusAvailable, room.Status)
}

func TestHotelClientGetTableUsesReservationFee(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/hotel/tables/table-7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"table-7","tableNumber":"T7","reservationFee":"25.00","capacity":6,"status":"AVAILABLE"}`))
	}))
	defer srv.Close()

	client := NewHotelClient(srv.URL, srv.Client(), testCaller())

	table, err := client.GetTable(context.Background(), "table-7")
	require.NoError(t, err)
	assert.Equal(t, "T7", table.Number)
	assert.True(t, table.PricePerUnit.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 6, table.Capacity)
}

func TestHotelClientMissingRoomIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewHotelClient(srv.URL, srv.Client(), testCaller())

	_, err := client.GetRoom(context.Background(), "room-404")
	assert.True(t, fault.IsNotFound(err), err)
	assert.Equal(t, 1, calls)
}

func TestHotelClientRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`true`))
	}))
	defer srv.Close()

	client := NewHotelClient(srv.URL, srv.Client(), testCaller())

	available, err := client.IsRoomAvailable(context.Background(), "room-101")
	require.NoError(t, err)
	assert.True(t, available)
	assert.Equal(t, 2, calls)
}

func TestHotelClientSetRoomStatus(t *testing.T) {
	var gotMethod, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewHotelClient(srv.URL, srv.Client(), testCaller())

	err := client.SetRoomStatus(context.Background(), "room-101", registry.StatusReserved)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "status=RESERVED", gotQuery)
}
