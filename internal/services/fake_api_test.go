package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/zmb3/spotify/v2"
)

// fakeCall records one request received by [fakeAPI].
type fakeCall struct {
	Route string
	IDs   []string
}

type fakePlaylist struct {
	ID     string
	Name   string
	Desc   string
	Public bool
	Owner  string
	Tracks []string // empty entries are served as null tracks
}

// fakeAPI is an in-memory stand-in for the parts of the Web API a [Session] touches.
type fakeAPI struct {
	*httptest.Server

	mu        sync.Mutex
	userID    string
	tracks    []string
	albums    []string
	artists   []string
	playlists []*fakePlaylist
	calls     []fakeCall
	failAt    map[string]int // route -> 1-based call number answered with 400
	counts    map[string]int
	lastAuth  string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{userID: "user-1", failAt: map[string]int{}, counts: map[string]int{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /me", f.me)
	mux.HandleFunc("GET /me/tracks", f.listIDs("GET /me/tracks", func() []string { return f.tracks }, "track"))
	mux.HandleFunc("GET /me/albums", f.listIDs("GET /me/albums", func() []string { return f.albums }, "album"))
	mux.HandleFunc("GET /me/following", f.following)
	mux.HandleFunc("GET /me/playlists", f.listPlaylists)
	mux.HandleFunc("GET /playlists/{id}/tracks", f.playlistItems)
	mux.HandleFunc("PUT /me/tracks", f.save("PUT /me/tracks", &f.tracks))
	mux.HandleFunc("PUT /me/albums", f.save("PUT /me/albums", &f.albums))
	mux.HandleFunc("PUT /me/following", f.save("PUT /me/following", &f.artists))
	mux.HandleFunc("POST /users/{user}/playlists", f.createPlaylist)
	mux.HandleFunc("POST /playlists/{id}/tracks", f.addPlaylistItems)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// client returns an unauthenticated client pointed at the fake.
func (f *fakeAPI) client() *spotify.Client {
	return spotify.New(f.Server.Client(), spotify.WithBaseURL(f.URL+"/"))
}

func (f *fakeAPI) authHeader() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth
}

func (f *fakeAPI) callsTo(route string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []fakeCall
	for _, c := range f.calls {
		if c.Route == route {
			out = append(out, c)
		}
	}
	return out
}

// record logs the call and reports whether it should fail.
func (f *fakeAPI) record(w http.ResponseWriter, r *http.Request, route string, ids []string) bool {
	f.calls = append(f.calls, fakeCall{Route: route, IDs: ids})
	f.counts[route]++
	f.lastAuth = r.Header.Get("Authorization")

	if n, ok := f.failAt[route]; ok && n == f.counts[route] {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{"status": http.StatusBadRequest, "message": "injected failure"},
		})
		return true
	}
	return false
}

func (f *fakeAPI) me(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.record(w, r, "GET /me", nil) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           f.userID,
		"display_name": "Test User",
		"email":        f.userID + "@example.com",
	})
}

func (f *fakeAPI) listIDs(route string, items func() []string, key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.record(w, r, route, nil) {
			return
		}

		all := items()
		offset, limit := paging(r)
		page := window(all, offset, limit)

		entries := make([]map[string]any, len(page))
		for i, id := range page {
			entries[i] = map[string]any{
				"added_at": "2024-01-01T00:00:00Z",
				key:        map[string]any{"id": id, "name": id, "type": key},
			}
		}
		writeJSON(w, http.StatusOK, f.offsetPage(r, entries, offset, limit, len(all)))
	}
}

func (f *fakeAPI) following(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.record(w, r, "GET /me/following", nil) {
		return
	}

	_, limit := paging(r)
	start := 0
	if after := r.URL.Query().Get("after"); after != "" {
		for i, id := range f.artists {
			if id == after {
				start = i + 1
				break
			}
		}
	}
	page := window(f.artists, start, limit)

	items := make([]map[string]any, len(page))
	for i, id := range page {
		items[i] = map[string]any{"id": id, "name": id, "type": "artist"}
	}

	next, after := "", ""
	if len(page) > 0 {
		after = page[len(page)-1]
	}
	if start+len(page) < len(f.artists) {
		next = fmt.Sprintf("%s/me/following?type=artist&limit=%d&after=%s", f.URL, limit, after)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"artists": map[string]any{
			"href":    f.URL + r.URL.RequestURI(),
			"limit":   limit,
			"next":    next,
			"cursors": map[string]any{"after": after},
			"total":   len(f.artists),
			"items":   items,
		},
	})
}

func (f *fakeAPI) listPlaylists(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.record(w, r, "GET /me/playlists", nil) {
		return
	}

	offset, limit := paging(r)
	page := window(f.playlists, offset, limit)

	entries := make([]map[string]any, len(page))
	for i, p := range page {
		entries[i] = map[string]any{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Desc,
			"public":      p.Public,
			"owner":       map[string]any{"id": p.Owner},
			"tracks":      map[string]any{"href": f.URL + "/playlists/" + p.ID + "/tracks", "total": len(p.Tracks)},
		}
	}
	writeJSON(w, http.StatusOK, f.offsetPage(r, entries, offset, limit, len(f.playlists)))
}

func (f *fakeAPI) playlistItems(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.record(w, r, "GET /playlists/{id}/tracks", nil) {
		return
	}

	p := f.playlist(r.PathValue("id"))
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]any{"status": http.StatusNotFound, "message": "not found"},
		})
		return
	}

	offset, limit := paging(r)
	page := window(p.Tracks, offset, limit)

	entries := make([]map[string]any, len(page))
	for i, id := range page {
		var track any
		if id != "" {
			track = map[string]any{"id": id, "name": id, "type": "track", "track": true, "episode": false}
		}
		entries[i] = map[string]any{"added_at": "2024-01-01T00:00:00Z", "is_local": false, "track": track}
	}
	writeJSON(w, http.StatusOK, f.offsetPage(r, entries, offset, limit, len(p.Tracks)))
}

func (f *fakeAPI) save(route string, dst *[]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		if f.record(w, r, route, ids) {
			return
		}

		*dst = append(*dst, ids...)
		w.WriteHeader(http.StatusOK)
	}
}

func (f *fakeAPI) createPlaylist(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.record(w, r, "POST /users/{user}/playlists", nil) {
		return
	}

	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p := &fakePlaylist{
		ID:     fmt.Sprintf("new-%d", len(f.playlists)+1),
		Name:   body.Name,
		Desc:   body.Description,
		Public: body.Public,
		Owner:  r.PathValue("user"),
	}
	f.playlists = append(f.playlists, p)

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Desc,
		"public":      p.Public,
		"owner":       map[string]any{"id": p.Owner},
	})
}

func (f *fakeAPI) addPlaylistItems(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body struct {
		URIs []string `json:"uris"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ids := make([]string, len(body.URIs))
	for i, uri := range body.URIs {
		ids[i] = strings.TrimPrefix(uri, "spotify:track:")
	}
	if f.record(w, r, "POST /playlists/{id}/tracks", ids) {
		return
	}

	if p := f.playlist(r.PathValue("id")); p != nil {
		p.Tracks = append(p.Tracks, ids...)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"snapshot_id": "snap"})
}

func (f *fakeAPI) playlist(id string) *fakePlaylist {
	for _, p := range f.playlists {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (f *fakeAPI) offsetPage(r *http.Request, items []map[string]any, offset, limit, total int) map[string]any {
	next := ""
	if offset+limit < total {
		q := r.URL.Query()
		q.Set("offset", strconv.Itoa(offset+limit))
		q.Set("limit", strconv.Itoa(limit))
		next = f.URL + r.URL.Path + "?" + q.Encode()
	}

	return map[string]any{
		"href":   f.URL + r.URL.RequestURI(),
		"limit":  limit,
		"offset": offset,
		"total":  total,
		"next":   next,
		"items":  items,
	}
}

func paging(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	return offset, limit
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	return items[offset:min(offset+limit, len(items))]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func makeIDs(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%03d", prefix, i)
	}
	return out
}
