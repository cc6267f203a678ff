package googleapitest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/goccy/go-json"
)

// Server is a fake upstream serving canned Places and map-search responses.
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	nearby  map[string]any
	details map[string]any
	search  map[string][]byte
	calls   map[string]int
}

// NewServer starts a fake upstream. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		nearby:  map[string]any{},
		details: map[string]any{},
		search:  map[string][]byte{},
		calls:   map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/place/nearbysearch/json", s.handleNearby)
	mux.HandleFunc("/place/details/json", s.handleDetails)
	mux.HandleFunc("/search", s.handleSearch)
	s.Server = httptest.NewServer(mux)

	return s
}

// PlacesBaseURL is the value to configure as the Places base URL.
func (s *Server) PlacesBaseURL() string { return s.URL + "/place" }

// SearchBaseURL is the value to configure as the map-search base URL.
func (s *Server) SearchBaseURL() string { return s.URL + "/search" }

// Location formats a probe location the way the nearby handler keys it.
func Location(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
}

// AddNearby registers the place IDs returned for a probe location.
func (s *Server) AddNearby(location string, ids ...string) {
	results := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		results = append(results, map[string]any{"place_id": id})
	}
	s.SetNearbyResponse(location, map[string]any{"status": "OK", "results": results})
}

// SetNearbyResponse registers a raw nearby search body for a probe location.
func (s *Server) SetNearbyResponse(location string, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nearby[location] = body
}

// AddDetails registers a Place Details result.
func (s *Server) AddDetails(id, name, address string, lat, lng float64, types ...string) {
	s.SetDetailsResponse(id, map[string]any{
		"status": "OK",
		"result": map[string]any{
			"place_id":          id,
			"name":              name,
			"formatted_address": address,
			"geometry":          map[string]any{"location": map[string]any{"lat": lat, "lng": lng}},
			"types":             types,
		},
	})
}

// SetDetailsResponse registers a raw details body for a place ID.
func (s *Server) SetDetailsResponse(id string, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[id] = body
}

// AddSearch registers the raw body served for a map-search query.
func (s *Server) AddSearch(query string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search[query] = body
}

// Calls returns how often the given endpoint ("nearby", "details", "search") was hit.
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

func (s *Server) count(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[endpoint]++
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	s.count("nearby")

	s.mu.Lock()
	body, ok := s.nearby[r.URL.Query().Get("location")]
	s.mu.Unlock()

	if !ok {
		body = map[string]any{"status": "ZERO_RESULTS", "results": []any{}}
	}
	writeJSON(w, body)
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	s.count("details")

	s.mu.Lock()
	body, ok := s.details[r.URL.Query().Get("placeid")]
	s.mu.Unlock()

	if !ok {
		body = map[string]any{"status": "NOT_FOUND"}
	}
	writeJSON(w, body)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.count("search")

	if r.Header.Get("User-Agent") == "" {
		http.Error(w, "missing user agent", http.StatusForbidden)
		return
	}

	s.mu.Lock()
	body, ok := s.search[r.URL.Query().Get("q")]
	s.mu.Unlock()

	if !ok {
		w.Write([]byte("<html><body>nothing here</body></html>"))
		return
	}
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
