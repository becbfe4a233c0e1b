// Package server serves a browser preview of a receiver session and accepts claims for it.
package server

import (
	"encoding/json"
	"errors"
	"hash/fnv"
	"net/http"
	"strconv"

	"github.com/woozymasta/sharebite/internal/api"
	"github.com/woozymasta/sharebite/internal/claim"
	"github.com/woozymasta/sharebite/internal/donation"
	"github.com/woozymasta/sharebite/internal/filter"
	"github.com/woozymasta/sharebite/internal/geo"

	"github.com/rs/zerolog/log"
)

const etagCap = 24

// maxClaimBody bounds the claim request body.
const maxClaimBody = 16 << 10

// Routes registers the handlers on a new mux.
func (s *ServerContext) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/donations", s.HandleDonations)
	mux.HandleFunc("/api/map.geojson", s.HandleMap)
	mux.HandleFunc("/api/claim", s.HandleClaim)
	mux.HandleFunc("/", s.HandleIndex)
	return mux
}

// HandleIndex serves the rendered donation list.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page, err := s.List.Bytes()
	if err != nil {
		log.Error().Err(err).Msg("Failed to render list page")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	h := fnv.New64a()
	_, _ = h.Write(page)
	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendUint(buf, h.Sum64(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(page)
}

type donationItem struct {
	donation.Record
	DistanceKm *float64 `json:"distance_km"`
	Visible    bool     `json:"visible"`
}

// MarshalJSON merges the wire record with the ranking fields.
func (d donationItem) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(d.Record)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}

	dist, _ := json.Marshal(d.DistanceKm)
	fields["distance_km"] = dist
	fields["visible"] = json.RawMessage(strconv.FormatBool(d.Visible))

	return json.Marshal(fields)
}

type donationsResponse struct {
	Receiver  *geo.Coordinate `json:"receiver"`
	Filter    filter.State    `json:"filter"`
	Donations []donationItem  `json:"donations"`
}

// HandleDonations returns the ranked set. When q or category is given, the
// list filter is applied first.
func (s *ServerContext) HandleDonations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	if query.Has("q") || query.Has("category") {
		s.Session.ApplyFilter(filter.State{
			SearchText: query.Get("q"),
			Category:   query.Get("category"),
		})
	}

	snap := s.Session.Snapshot()
	resp := donationsResponse{
		Receiver:  snap.Receiver,
		Filter:    snap.Filter,
		Donations: make([]donationItem, 0, len(snap.Records)),
	}
	for _, rec := range snap.Records {
		item := donationItem{Record: rec, Visible: snap.Visible[rec.ID]}
		if rec.HasDistance() {
			d := rec.DistanceKm
			item.DistanceKm = &d
		}
		resp.Donations = append(resp.Donations, item)
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleMap serves the current map document.
func (s *ServerContext) HandleMap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "no-cache")
	// Ignoring error as we cannot handle client disconnects
	_, _ = s.Map.WriteTo(w)
}

type claimBody struct {
	DonationID string `json:"donation_id"`
	claim.Form
}

// HandleClaim runs the claim dialog for one donation on behalf of the browser.
func (s *ServerContext) HandleClaim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body claimBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxClaimBody)).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, ok := s.Session.Lookup(body.DonationID); !ok {
		writeDetail(w, http.StatusNotFound, "Donation not available")
		return
	}

	err := s.Workflow.Claim(r.Context(), body.DonationID, body.Form)
	if err == nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": claim.MsgClaimed})
		return
	}

	var (
		verr      *donation.ValidationError
		rejected  *api.RejectedError
		transport *api.TransportError
	)
	switch {
	case errors.Is(err, claim.ErrInFlight), errors.Is(err, claim.ErrConflict):
		writeDetail(w, http.StatusConflict, err.Error())
	case errors.As(err, &verr):
		writeDetail(w, http.StatusUnprocessableEntity, verr.Error())
	case errors.As(err, &rejected), errors.As(err, &transport):
		writeDetail(w, http.StatusBadGateway, api.Detail(err, claim.MsgClaimFallback))
	default:
		writeDetail(w, http.StatusInternalServerError, err.Error())
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}
