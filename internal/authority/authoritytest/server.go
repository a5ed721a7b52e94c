// Package authoritytest provides an in-memory stand-in for the remote
// authority: flat JSON collections with exact-match query filtering,
// _sort/_order support, server-assigned ids, and per-route request counters
// so tests can assert which calls were (or were not) issued.
package authoritytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// Record is one stored row of a collection.
type Record = map[string]any

// Server is the fake authority.
type Server struct {
	mu          sync.Mutex
	collections map[string][]Record
	nextID      int64
	counts      map[string]int
	failures    map[string]int // route -> status to return once

	httpSrv *httptest.Server
}

// New creates an empty fake authority listening on a local port.
func New() *Server {
	s := &Server{
		collections: make(map[string][]Record),
		nextID:      1,
		counts:      make(map[string]int),
		failures:    make(map[string]int),
	}

	r := mux.NewRouter()
	r.HandleFunc("/{collection}", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/{collection}", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/{collection}/{id}", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/{collection}/{id}", s.handleReplace).Methods(http.MethodPut)

	s.httpSrv = httptest.NewServer(r)
	return s
}

// URL is the base URL of the fake authority.
func (s *Server) URL() string { return s.httpSrv.URL }

// Close shuts the server down.
func (s *Server) Close() { s.httpSrv.Close() }

// Seed inserts records into a collection, assigning ids to records that have
// none.
func (s *Server) Seed(collection string, records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		if _, ok := rec["id"]; !ok {
			rec["id"] = s.nextID
			s.nextID++
		}
		s.collections[collection] = append(s.collections[collection], rec)
	}
}

// All returns a copy of a collection's records.
func (s *Server) All(collection string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.collections[collection]))
	copy(out, s.collections[collection])
	return out
}

// Count reports how many requests hit the given method and collection,
// e.g. Count("DELETE", "comments").
func (s *Server) Count(method, collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[method+" "+collection]
}

// FailNext makes the next request to the given method and collection return
// the given status instead of being served.
func (s *Server) FailNext(method, collection string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+collection] = status
}

// intercept records the request and serves a pending injected failure.
// Returns true when the request was consumed.
func (s *Server) intercept(w http.ResponseWriter, r *http.Request, collection string) bool {
	key := r.Method + " " + collection
	s.mu.Lock()
	s.counts[key]++
	status, failing := s.failures[key]
	if failing {
		delete(s.failures, key)
	}
	s.mu.Unlock()

	if failing {
		http.Error(w, http.StatusText(status), status)
		return true
	}
	return false
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	if s.intercept(w, r, collection) {
		return
	}

	query := r.URL.Query()
	sortField := query.Get("_sort")
	order := query.Get("_order")

	s.mu.Lock()
	matched := make([]Record, 0)
	for _, rec := range s.collections[collection] {
		if matchesQuery(rec, query) {
			matched = append(matched, rec)
		}
	}
	s.mu.Unlock()

	if sortField != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := stringify(matched[i][sortField]), stringify(matched[j][sortField])
			if order == "desc" {
				return a > b
			}
			return a < b
		})
	}

	writeJSON(w, http.StatusOK, matched)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	if s.intercept(w, r, collection) {
		return
	}
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	var rec Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	rec["id"] = s.nextID
	s.nextID++
	s.collections[collection] = append(s.collections[collection], rec)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collection, id := vars["collection"], vars["id"]
	if s.intercept(w, r, collection) {
		return
	}

	var rec Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.collections[collection] {
		if stringify(existing["id"]) == id {
			rec["id"] = existing["id"]
			s.collections[collection][i] = rec
			writeJSON(w, http.StatusOK, rec)
			return
		}
	}
	http.Error(w, "Not found", http.StatusNotFound)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collection, id := vars["collection"], vars["id"]
	if s.intercept(w, r, collection) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.collections[collection]
	for i, rec := range records {
		if stringify(rec["id"]) == id {
			s.collections[collection] = append(records[:i:i], records[i+1:]...)
			writeJSON(w, http.StatusOK, Record{})
			return
		}
	}
	http.Error(w, "Not found", http.StatusNotFound)
}

// matchesQuery applies exact-match filtering; values compare in their string
// form, since the authority stores ids as numbers or strings interchangeably.
func matchesQuery(rec Record, query map[string][]string) bool {
	for key, values := range query {
		if strings.HasPrefix(key, "_") {
			continue
		}
		if len(values) == 0 {
			continue
		}
		if stringify(rec[key]) != values[0] {
			return false
		}
	}
	return true
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
