package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/weatherdeck/weatherdeck/internal/api"
	"github.com/weatherdeck/weatherdeck/internal/state"
	"github.com/weatherdeck/weatherdeck/internal/storage"
	"github.com/weatherdeck/weatherdeck/internal/weatherstack"
)

const sampleBody = `{
	"location": {"name": "Tokyo", "region": "Tokyo", "localtime": "2026-08-30 14:30"},
	"current": {
		"temperature": 28, "feelslike": 31, "uv_index": 6, "humidity": 70,
		"wind_speed": 12, "pressure": 1012, "visibility": 10,
		"weather_descriptions": ["Sunny"], "weather_code": 113,
		"weather_icons": ["https://example.com/sun.png"],
		"observation_time": "05:30 AM",
		"astro": {"sunrise": "5:10 AM", "sunset": "6:20 PM", "moonrise": "8:00 PM",
			"moonset": "6:00 AM", "moon_phase": "Full Moon", "moon_illumination": "75"}
	}
}`

func setupServer(t *testing.T, upstream http.Handler) (*api.Server, *state.Store) {
	t.Helper()

	kv, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	logger := slog.New(slog.DiscardHandler)
	st := state.New(kv, logger)
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("load state: %v", err)
	}
	t.Cleanup(st.Close)

	base := "http://127.0.0.1:0"
	if upstream != nil {
		srv := httptest.NewServer(upstream)
		t.Cleanup(srv.Close)
		base = srv.URL
	}

	client := weatherstack.NewClient(base, kv, st, logger)
	t.Cleanup(client.Close)

	srv := api.NewServer(st, client, api.NewGeoBridge(), "k", ":0", logger)
	return srv, st
}

func do(t *testing.T, srv *api.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, nil)

	w := do(t, srv, "GET", "/health", "")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status"`) {
		t.Error("expected status field in JSON response")
	}
}

func TestWeatherEndpoint(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sampleBody)
	}))

	w := do(t, srv, "GET", "/api/weather?city=Tokyo", "")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result api.WeatherResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Report.Name != "Tokyo" {
		t.Errorf("name = %q", result.Report.Name)
	}
	if len(result.Details) != 8 {
		t.Errorf("details = %d, want 8", len(result.Details))
	}
}

func TestWeatherEndpointRequiresCity(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, nil)

	w := do(t, srv, "GET", "/api/weather", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestWeatherEndpointNotFound(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"code":615,"type":"request_failed","info":"no result"}}`)
	}))

	w := do(t, srv, "GET", "/api/weather?city=Nowhereville", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestWeatherEndpointUnavailable(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, nil) // unroutable upstream, empty cache

	w := do(t, srv, "GET", "/api/weather?city=Tokyo", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestCityEndpoints(t *testing.T) {
	t.Parallel()
	srv, st := setupServer(t, nil)

	w := do(t, srv, "POST", "/api/cities", `{"city":"Wandiligong"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("add: expected 204, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, srv, "GET", "/api/cities", "")
	if !strings.Contains(w.Body.String(), "Wandiligong") {
		t.Errorf("city missing from list: %s", w.Body.String())
	}

	w = do(t, srv, "DELETE", "/api/cities/Wandiligong", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
	for _, c := range st.Cities() {
		if c == "Wandiligong" {
			t.Error("city still present after delete")
		}
	}
}

func TestAddCityRejectsBlank(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, nil)

	w := do(t, srv, "POST", "/api/cities", `{"city":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestFavoriteEndpoints(t *testing.T) {
	t.Parallel()
	srv, st := setupServer(t, nil)

	w := do(t, srv, "PUT", "/api/favorites/Osaka-Shi", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if !st.IsFavorite("Osaka-Shi") {
		t.Error("favorite not recorded")
	}

	w = do(t, srv, "DELETE", "/api/favorites/Osaka-Shi", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if st.IsFavorite("Osaka-Shi") {
		t.Error("favorite still present after delete")
	}
}

func TestNoteEndpoints(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, nil)

	w := do(t, srv, "POST", "/api/notes", `{"city":"Tokyo","content":"pack an umbrella"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var note state.Note
	if err := json.NewDecoder(w.Body).Decode(&note); err != nil {
		t.Fatal(err)
	}
	if note.ID == "" || note.Content != "pack an umbrella" {
		t.Fatalf("note = %+v", note)
	}

	w = do(t, srv, "PATCH", "/api/notes/Tokyo/"+note.ID, `{"content":"bring a coat"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("update: expected 204, got %d", w.Code)
	}

	w = do(t, srv, "GET", "/api/notes?city=Tokyo", "")
	if !strings.Contains(w.Body.String(), "bring a coat") {
		t.Errorf("updated content missing: %s", w.Body.String())
	}

	w = do(t, srv, "DELETE", "/api/notes/Tokyo/"+note.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}

	w = do(t, srv, "GET", "/api/notes?city=Tokyo", "")
	if strings.Contains(w.Body.String(), note.ID) {
		t.Error("note still listed after delete")
	}
}

func TestAddNoteRejectsBlankContent(t *testing.T) {
	t.Parallel()
	srv, _ := setupServer(t, nil)

	w := do(t, srv, "POST", "/api/notes", `{"city":"Tokyo","content":"  "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestToastEndpoints(t *testing.T) {
	t.Parallel()
	srv, st := setupServer(t, nil)

	toast, cancel := st.AddToast("Weather info not found", state.ToastWarn)
	defer cancel()

	w := do(t, srv, "GET", "/api/toasts", "")
	if !strings.Contains(w.Body.String(), toast.ID) {
		t.Fatalf("toast missing: %s", w.Body.String())
	}

	w = do(t, srv, "DELETE", "/api/toasts/"+toast.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if len(st.Toasts()) != 0 {
		t.Error("toast still present after delete")
	}
}
