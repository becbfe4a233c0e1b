package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/sharebite/internal/api"
	"github.com/woozymasta/sharebite/internal/claim"
	"github.com/woozymasta/sharebite/internal/config"
	"github.com/woozymasta/sharebite/internal/donation"
	"github.com/woozymasta/sharebite/internal/geo"
	"github.com/woozymasta/sharebite/internal/locate"
	"github.com/woozymasta/sharebite/internal/render"
	"github.com/woozymasta/sharebite/internal/view"
	"github.com/woozymasta/sharebite/internal/view/viewtest"
)

type claimerFunc func(ctx context.Context, req donation.ClaimRequest) error

func (f claimerFunc) ClaimDonation(ctx context.Context, req donation.ClaimRequest) error {
	return f(ctx, req)
}

func newTestServer(t *testing.T, claimErr error) http.Handler {
	t.Helper()

	return newTestServerWith(t, claimerFunc(func(context.Context, donation.ClaimRequest) error { return claimErr }))
}

func newTestServerWith(t *testing.T, claimer claim.Claimer) http.Handler {
	t.Helper()

	fetcher := &viewtest.Fetcher{Records: []donation.Record{
		{ID: "far", FoodName: "Bread", Category: "bakery", Coordinate: &geo.Coordinate{Latitude: 0, Longitude: 1}},
		{ID: "near", FoodName: "Fried Rice", Category: "veg", Coordinate: &geo.Coordinate{Latitude: 0, Longitude: 0.1}},
		{ID: "nowhere", FoodName: "Rice Pudding", Category: "dessert"},
	}}

	cfg := config.Default()
	list := render.NewHTMLList("Nearby donations")
	mapView := render.NewGeoJSONMap(cfg.Map)
	notifier := &viewtest.Notifier{}

	session := view.NewSession(fetcher, list, mapView, notifier, cfg.Map.Zoom)
	require.NoError(t, session.Start(context.Background(), locate.Static{Position: &geo.Coordinate{}}))

	workflow := claim.New(claimer, session, &viewtest.Modal{}, notifier)

	return RequestLogger(NewServerContext(session, workflow, list, mapView).Routes())
}

func TestHandleIndex(t *testing.T) {
	h := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Fried Rice")
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type donationsPayload struct {
	Receiver  *geo.Coordinate `json:"receiver"`
	Donations []struct {
		ID         string   `json:"id"`
		DistanceKm *float64 `json:"distance_km"`
		Visible    bool     `json:"visible"`
	} `json:"donations"`
}

func getDonations(t *testing.T, h http.Handler, target string) donationsPayload {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload donationsPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestHandleDonations(t *testing.T) {
	h := newTestServer(t, nil)

	payload := getDonations(t, h, "/api/donations")
	require.NotNil(t, payload.Receiver)
	require.Len(t, payload.Donations, 3)
	assert.Equal(t, "near", payload.Donations[0].ID)
	assert.Equal(t, "far", payload.Donations[1].ID)
	assert.Equal(t, "nowhere", payload.Donations[2].ID)
	require.NotNil(t, payload.Donations[0].DistanceKm)
	assert.InDelta(t, 11.12, *payload.Donations[0].DistanceKm, 0.01)
	assert.Nil(t, payload.Donations[2].DistanceKm)

	payload = getDonations(t, h, "/api/donations?q=rice&category=all")
	visible := map[string]bool{}
	for _, d := range payload.Donations {
		visible[d.ID] = d.Visible
	}
	assert.Equal(t, map[string]bool{"near": true, "far": false, "nowhere": true}, visible)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/donations", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleMapKeepsAllMarkersWhenFiltered(t *testing.T) {
	h := newTestServer(t, nil)
	getDonations(t, h, "/api/donations?q=nothing-matches")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/map.geojson", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	var doc render.MapDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Len(t, doc.Markers.Features, 3, "receiver plus two geocoded donations")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/map.geojson", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func postClaim(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/claim", strings.NewReader(body)))
	return rec
}

const validClaim = `{"donation_id":"near","receiver_name":"Sam","receiver_email":"sam@example.com","receiver_phone":"555"}`

func TestHandleClaim(t *testing.T) {
	h := newTestServer(t, nil)

	rec := postClaim(h, validClaim)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	payload := getDonations(t, h, "/api/donations")
	require.Len(t, payload.Donations, 2)
	for _, d := range payload.Donations {
		assert.NotEqual(t, "near", d.ID)
	}

	rec = postClaim(h, validClaim)
	assert.Equal(t, http.StatusNotFound, rec.Code, "claimed donations are gone")
}

func TestHandleClaimErrors(t *testing.T) {
	tests := []struct {
		name     string
		claimErr error
		body     string
		status   int
		detail   string
	}{
		{"rejected", &api.RejectedError{Status: 400, Detail: "Already claimed"}, validClaim, http.StatusBadGateway, "Already claimed"},
		{"transport", &api.TransportError{Op: "claim donation", Err: assert.AnError}, validClaim, http.StatusBadGateway, assert.AnError.Error()},
		{"invalid", nil, `{"donation_id":"near","receiver_name":"Sam"}`, http.StatusUnprocessableEntity, ""},
		{"bad json", nil, `{`, http.StatusBadRequest, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, tt.claimErr)

			rec := postClaim(h, tt.body)
			require.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.detail != "" {
				assert.Equal(t, tt.detail, body["detail"])
			}

			assert.Len(t, getDonations(t, h, "/api/donations").Donations, 3, "failed claims keep the donation")
		})
	}
}

func TestHandleClaimConcurrentRequestsKeepTheirDonation(t *testing.T) {
	var mu sync.Mutex
	var sent []donation.ClaimRequest

	h := newTestServerWith(t, claimerFunc(func(_ context.Context, req donation.ClaimRequest) error {
		mu.Lock()
		sent = append(sent, req)
		mu.Unlock()
		return &api.RejectedError{Status: 400, Detail: "Already claimed"}
	}))

	owner := map[string]string{"near": "Alice", "far": "Bob"}
	var wg sync.WaitGroup
	for round := 0; round < 50; round++ {
		for id, name := range owner {
			wg.Add(1)
			go func(id, name string) {
				defer wg.Done()
				body := `{"donation_id":"` + id + `","receiver_name":"` + name + `","receiver_email":"x@example.com","receiver_phone":"1"}`
				rec := postClaim(h, body)
				assert.Contains(t, []int{http.StatusConflict, http.StatusBadGateway}, rec.Code)
			}(id, name)
		}
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, sent)
	for _, req := range sent {
		assert.Equal(t, owner[req.DonationID], req.ReceiverName, "claim for %s", req.DonationID)
	}
}
