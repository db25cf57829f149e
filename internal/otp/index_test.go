package otp_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottplanner/ottplanner/internal/otp"
)

func TestClient_Routes(t *testing.T) {
	var gotPath string
	client, recorder := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[
			{"id": {"agencyId": "TriMet", "id": "54"}, "shortName": "54", "longName": "Beaverton-Hillsdale Hwy", "mode": "BUS"},
			"junk",
			{"id": "TriMet:90", "longName": "MAX Red Line", "mode": "TRAM"}
		]`))
	})

	routes, err := client.Routes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/otp/routers/default/index/routes", gotPath)

	require.Len(t, routes, 2)
	name, _ := routes[0].String("shortName")
	assert.Equal(t, "54", name)
	id, _ := routes[1].Value("id")
	assert.Equal(t, "TriMet:90", id)

	require.Len(t, recorder.calls, 1)
	assert.Equal(t, "index_routes", recorder.calls[0].operation)
	assert.NoError(t, recorder.calls[0].err)
}

func TestClient_StopRoutes(t *testing.T) {
	var gotPath string
	client, recorder := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[{"id": "TriMet:54", "shortName": "54", "mode": "BUS"}]`))
	})

	routes, err := client.StopRoutes(context.Background(), otp.EntityID{AgencyID: "TriMet", ID: "8989"})
	require.NoError(t, err)
	assert.Equal(t, "/otp/routers/default/index/stops/TriMet:8989/routes", gotPath)
	assert.Len(t, routes, 1)

	require.Len(t, recorder.calls, 1)
	assert.Equal(t, "index_stop_routes", recorder.calls[0].operation)
}

func TestClient_IndexErrors(t *testing.T) {
	t.Run("unknown stop", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, err := client.StopRoutes(context.Background(), otp.EntityID{AgencyID: "TriMet", ID: "0"})
		assert.ErrorIs(t, err, otp.ErrNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := client.Routes(context.Background())
		assert.ErrorIs(t, err, otp.ErrEngineUnavailable)
		assert.NotErrorIs(t, err, otp.ErrNotFound)
	})

	t.Run("not a list", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"routes": []}`))
		})
		_, err := client.Routes(context.Background())
		assert.ErrorIs(t, err, otp.ErrInvalidResponse)
	})
}
