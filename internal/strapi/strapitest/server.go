// Package strapitest runs an in-memory stand-in for the REST backend so
// import pipelines can be exercised without a network.
package strapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// relations maps an attribute name to the collection it points at.
var relations = map[string]string{
	"division":         "divisions",
	"depot":            "depots",
	"bus_station":      "bus-stations",
	"bus_stand":        "bus-stands",
	"nvr":              "nvrs",
	"camera":           "cameras",
	"switch":           "switches",
	"rack":             "racks",
	"pole":             "poles",
	"weatherproof_box": "weatherproof-boxes",
	"cable":            "cables",
	"conduit":          "conduits",
	"wire":             "wires",
	"ups":              "upss",
	"lcd":              "lcds",
}

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	data       map[string][]map[string]any
	nextID     int
	unique     map[string]string
	failCreate map[string]func(data map[string]any) bool
	failList   map[string]bool
	creates    map[string]int
}

// New starts a fake backend. Use URL()+"/api" as the client base URL.
func New() *Server {
	s := &Server{
		data:       make(map[string][]map[string]any),
		unique:     make(map[string]string),
		failCreate: make(map[string]func(map[string]any) bool),
		failList:   make(map[string]bool),
		creates:    make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// BaseURL is the API root to hand to strapi.NewClient.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// Seed inserts records and returns their ids.
func (s *Server) Seed(collection string, records ...map[string]any) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(records))
	for _, r := range records {
		ids = append(ids, s.insert(collection, r))
	}
	return ids
}

// Unique makes field unique within collection; duplicate creates fail with 400.
func (s *Server) Unique(collection, field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unique[collection] = field
}

// FailCreates makes creates in collection fail with 500 when fn returns true.
func (s *Server) FailCreates(collection string, fn func(data map[string]any) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreate[collection] = fn
}

// FailLists makes every list read of collection fail with 500.
func (s *Server) FailLists(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failList[collection] = true
}

// Count returns the number of stored records in collection.
func (s *Server) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data[collection])
}

// Creates returns how many successful creates collection has received.
func (s *Server) Creates(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates[collection]
}

// Records returns copies of the raw stored records (relations as ids).
func (s *Server) Records(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.data[collection]))
	for _, r := range s.data[collection] {
		out = append(out, copyMap(r))
	}
	return out
}

func (s *Server) insert(collection string, rec map[string]any) int {
	s.nextID++
	stored := copyMap(rec)
	stored["id"] = s.nextID
	if _, ok := stored["documentId"]; !ok {
		stored["documentId"] = fmt.Sprintf("doc-%d", s.nextID)
	}
	s.data[collection] = append(s.data[collection], stored)
	return s.nextID
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api"), "/")
	parts := strings.SplitN(path, "/", 2)
	collection := parts[0]
	id := ""
	if len(parts) == 2 {
		id = parts[1]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && id == "":
		s.list(w, r, collection)
	case r.Method == http.MethodPost && id == "":
		s.create(w, r, collection)
	case r.Method == http.MethodPut && id != "":
		s.update(w, r, collection, id)
	case r.Method == http.MethodDelete && id != "":
		s.remove(w, collection, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowedError", "method not allowed")
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, collection string) {
	if s.failList[collection] {
		writeError(w, http.StatusInternalServerError, "InternalServerError", "list failed")
		return
	}

	filters := parseFilters(r.URL.Query())
	var matched []map[string]any
	for _, rec := range s.data[collection] {
		if s.matches(rec, filters) {
			matched = append(matched, rec)
		}
	}

	page := atoiDefault(r.URL.Query().Get("pagination[page]"), 1)
	pageSize := atoiDefault(r.URL.Query().Get("pagination[pageSize]"), 25)
	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	out := make([]map[string]any, 0, end-start)
	for _, rec := range matched[start:end] {
		out = append(out, s.expand(rec))
	}

	pageCount := 0
	if pageSize > 0 {
		pageCount = (total + pageSize - 1) / pageSize
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": out,
		"meta": map[string]any{"pagination": map[string]any{
			"page": page, "pageSize": pageSize, "pageCount": pageCount, "total": total,
		}},
	})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, collection string) {
	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Data == nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "Missing \"data\" payload in the request body")
		return
	}

	if fn := s.failCreate[collection]; fn != nil && fn(body.Data) {
		writeError(w, http.StatusInternalServerError, "InternalServerError", "Internal Server Error")
		return
	}

	if field, ok := s.unique[collection]; ok {
		for _, rec := range s.data[collection] {
			if fmt.Sprint(rec[field]) == fmt.Sprint(body.Data[field]) {
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"data": nil,
					"error": map[string]any{
						"status":  400,
						"name":    "ValidationError",
						"message": "This attribute must be unique",
						"details": map[string]any{"errors": []any{map[string]any{
							"path": []string{field}, "message": "This attribute must be unique", "name": "ValidationError",
						}}},
					},
				})
				return
			}
		}
	}

	newID := s.insert(collection, body.Data)
	s.creates[collection]++
	writeJSON(w, http.StatusCreated, map[string]any{"data": s.expand(s.find(collection, strconv.Itoa(newID))), "meta": map[string]any{}})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, collection, id string) {
	rec := s.find(collection, id)
	if rec == nil {
		writeError(w, http.StatusNotFound, "NotFoundError", "Not Found")
		return
	}
	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "invalid body")
		return
	}
	for k, v := range body.Data {
		rec[k] = v
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": s.expand(rec), "meta": map[string]any{}})
}

func (s *Server) remove(w http.ResponseWriter, collection, id string) {
	recs := s.data[collection]
	for i, rec := range recs {
		if matchesID(rec, id) {
			s.data[collection] = append(recs[:i], recs[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "NotFoundError", "Not Found")
}

func (s *Server) find(collection, id string) map[string]any {
	for _, rec := range s.data[collection] {
		if matchesID(rec, id) {
			return rec
		}
	}
	return nil
}

func matchesID(rec map[string]any, id string) bool {
	return fmt.Sprint(rec["id"]) == id || fmt.Sprint(rec["documentId"]) == id
}

// expand replaces relation ids with the related records, one level deep,
// the way a populated read does.
func (s *Server) expand(rec map[string]any) map[string]any {
	out := copyMap(rec)
	for k, v := range out {
		if target, ok := relations[k]; ok {
			out[k] = s.related(target, v)
			continue
		}
		if strings.HasSuffix(k, "_selection") {
			entries, _ := v.([]any)
			expanded := make([]any, 0, len(entries))
			for _, e := range entries {
				em, ok := e.(map[string]any)
				if !ok {
					continue
				}
				ec := copyMap(em)
				for ek, ev := range ec {
					if target, ok := relations[ek]; ok {
						ec[ek] = s.related(target, ev)
					}
				}
				expanded = append(expanded, ec)
			}
			out[k] = expanded
		}
	}
	return out
}

func (s *Server) related(collection string, ref any) any {
	target := s.find(collection, fmt.Sprint(toInt(ref)))
	if target == nil {
		return nil
	}
	flat := make(map[string]any, len(target))
	for k, v := range target {
		if _, isRel := relations[k]; isRel {
			continue
		}
		flat[k] = v
	}
	return flat
}

type filter struct {
	path   []string
	op     string
	values []string
}

func parseFilters(q map[string][]string) []filter {
	byKey := make(map[string]*filter)
	var keys []string
	for key, vals := range q {
		if !strings.HasPrefix(key, "filters[") {
			continue
		}
		segs := strings.Split(strings.TrimSuffix(strings.TrimPrefix(key, "filters["), "]"), "][")
		if len(segs) < 2 {
			continue
		}
		// $in clauses carry a trailing index segment
		if _, err := strconv.Atoi(segs[len(segs)-1]); err == nil && len(segs) >= 3 {
			segs = segs[:len(segs)-1]
		}
		path := segs[:len(segs)-1]
		op := segs[len(segs)-1]
		id := strings.Join(path, ".") + op
		f, ok := byKey[id]
		if !ok {
			f = &filter{path: path, op: op}
			byKey[id] = f
			keys = append(keys, id)
		}
		f.values = append(f.values, vals...)
	}
	sort.Strings(keys)
	out := make([]filter, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}

func (s *Server) matches(rec map[string]any, filters []filter) bool {
	for _, f := range filters {
		v, ok := s.lookup(rec, f.path)
		if !ok {
			return false
		}
		got := fmt.Sprint(v)
		switch f.op {
		case "$eq":
			if got != f.values[0] {
				return false
			}
		case "$containsi":
			if !strings.Contains(strings.ToLower(got), strings.ToLower(f.values[0])) {
				return false
			}
		case "$in":
			found := false
			for _, want := range f.values {
				if got == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (s *Server) lookup(rec map[string]any, path []string) (any, bool) {
	v, ok := rec[path[0]]
	if !ok || v == nil {
		return nil, false
	}
	if len(path) == 1 {
		return v, true
	}
	target, isRel := relations[path[0]]
	if !isRel {
		return nil, false
	}
	if path[1] == "id" && len(path) == 2 {
		return toInt(v), true
	}
	related := s.find(target, fmt.Sprint(toInt(v)))
	if related == nil {
		return nil, false
	}
	return s.lookup(related, path[1:])
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func atoiDefault(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, name, msg string) {
	writeJSON(w, status, map[string]any{
		"data":  nil,
		"error": map[string]any{"status": status, "name": name, "message": msg, "details": map[string]any{}},
	})
}
