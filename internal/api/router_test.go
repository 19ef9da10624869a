package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sudzikcoin/PingPoint-sub001/internal/cache"
	"github.com/sudzikcoin/PingPoint-sub001/internal/database"
	"github.com/sudzikcoin/PingPoint-sub001/internal/handler"
	"github.com/sudzikcoin/PingPoint-sub001/internal/models"
	"github.com/sudzikcoin/PingPoint-sub001/internal/ratelimit"
	"github.com/sudzikcoin/PingPoint-sub001/internal/repository"
	"github.com/sudzikcoin/PingPoint-sub001/internal/service"

	_ "modernc.org/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer wires the complete stack over a throwaway sqlite file with
// one seeded in-transit load and two stops
func newTestServer(t *testing.T, publicLimit int) (*gin.Engine, *sql.DB, *service.LinkService) {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.NewMigrationManager(db).RunMigrations(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	seed := []string{
		`INSERT INTO loads (id, status, origin_city, origin_state, dest_city, dest_state)
			VALUES ('load-1', 'in_transit', 'Chicago', 'IL', 'Dallas', 'TX')`,
		`INSERT INTO stops (id, load_id, sequence, type, city, state, lat, lng, geofence_radius_m)
			VALUES ('stop-1', 'load-1', 1, 'pickup', 'Chicago', 'IL', 41.0, -87.0, 300)`,
		`INSERT INTO stops (id, load_id, sequence, type, city, state, lat, lng, geofence_radius_m)
			VALUES ('stop-2', 'load-1', 2, 'dropoff', 'Dallas', 'TX', 42.0, -87.0, 300)`,
	}
	for _, q := range seed {
		if _, err := db.Exec(q); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	links := service.NewLinkService(repository.NewLinkRepository(db), repository.NewLoadRepository(db))
	ingest := service.NewIngestService(
		db, links,
		ratelimit.NewDebouncer(30*time.Second, 5*time.Minute),
		service.NewValidator(5000, 5*time.Minute, 24*time.Hour),
		service.NewPlausibilityFilter(120),
		service.NewGeofenceEngine(3, 300),
		nil, nil,
	)
	tracking := service.NewTrackingService(
		links,
		repository.NewLoadRepository(db),
		repository.NewStopRepository(db),
		repository.NewReportRepository(db),
		cache.NewSnapshotCache(10*time.Second),
		7*24*time.Hour,
		nil,
	)
	stops := service.NewStopService(db, links, service.NewGeofenceEngine(3, 300), nil)

	r := SetupRouter(Handlers{
		Ping:          handler.NewPingHandler(ingest),
		Stop:          handler.NewStopHandler(stops),
		Tracking:      handler.NewTrackingHandler(tracking),
		Link:          handler.NewLinkHandler(links),
		PublicLimiter: ratelimit.NewFixedWindow(publicLimit, time.Minute),
	})
	return r, db, links
}

func doJSON(r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func pingBody(lat, lng float64, at time.Time) gin.H {
	return gin.H{
		"latitude":  lat,
		"longitude": lng,
		"timestamp": at.Format(time.RFC3339),
	}
}

func TestHealthEndpoint(t *testing.T) {
	r, _, _ := newTestServer(t, 60)
	w := doJSON(r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health returned %d", w.Code)
	}
}

func TestSubmitPing(t *testing.T) {
	r, _, links := newTestServer(t, 60)
	link, err := links.Issue("load-1", models.RoleDriver)
	if err != nil {
		t.Fatal(err)
	}
	hdr := map[string]string{handler.DriverTokenHeader: link.Token}

	w := doJSON(r, http.MethodPost, "/api/v1/driver/pings", pingBody(41.0, -87.0, time.Now()), hdr)
	if w.Code != http.StatusOK {
		t.Fatalf("submit returned %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data models.SubmitReportResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.ReportID == 0 || !resp.Data.Plausible {
		t.Fatalf("unexpected submit payload: %+v", resp.Data)
	}

	// a second ping inside the debounce interval backs off
	w = doJSON(r, http.MethodPost, "/api/v1/driver/pings", pingBody(41.0, -87.0, time.Now()), hdr)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 inside the interval, got %d", w.Code)
	}
}

func TestSubmitPingRejections(t *testing.T) {
	r, _, links := newTestServer(t, 60)
	link, err := links.Issue("load-1", models.RoleDriver)
	if err != nil {
		t.Fatal(err)
	}
	hdr := map[string]string{handler.DriverTokenHeader: link.Token}

	// no token
	if w := doJSON(r, http.MethodPost, "/api/v1/driver/pings", pingBody(41, -87, time.Now()), nil); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: got %d, want 401", w.Code)
	}
	// garbage token
	bad := map[string]string{handler.DriverTokenHeader: "nope"}
	if w := doJSON(r, http.MethodPost, "/api/v1/driver/pings", pingBody(41, -87, time.Now()), bad); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: got %d, want 401", w.Code)
	}
	// missing coordinates fail binding
	if w := doJSON(r, http.MethodPost, "/api/v1/driver/pings", gin.H{"timestamp": time.Now().Format(time.RFC3339)}, hdr); w.Code != http.StatusBadRequest {
		t.Errorf("missing coords: got %d, want 400", w.Code)
	}
	// out-of-range latitude is rejected with a reason code
	w := doJSON(r, http.MethodPost, "/api/v1/driver/pings", pingBody(91, -87, time.Now()), hdr)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad latitude: got %d, want 400", w.Code)
	}
	var resp struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Reason != "invalid_latitude" {
		t.Errorf("reason = %q, want invalid_latitude", resp.Reason)
	}
}

func TestPublicTracking(t *testing.T) {
	r, _, links := newTestServer(t, 60)
	public, err := links.Issue("load-1", models.RolePublic)
	if err != nil {
		t.Fatal(err)
	}

	w := doJSON(r, http.MethodGet, "/api/v1/track/"+public.Token, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("track returned %d: %s", w.Code, w.Body.String())
	}
	var snap models.PublicSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Status != models.LoadInTransit || len(snap.Stops) != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	// unknown token
	if w := doJSON(r, http.MethodGet, "/api/v1/track/bogus", nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("bogus token: got %d, want 401", w.Code)
	}
	// a driver token does not open the public view
	driver, err := links.Issue("load-1", models.RoleDriver)
	if err != nil {
		t.Fatal(err)
	}
	if w := doJSON(r, http.MethodGet, "/api/v1/track/"+driver.Token, nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("driver token on public route: got %d, want 401", w.Code)
	}
}

func TestPublicTrackingRateLimit(t *testing.T) {
	r, _, links := newTestServer(t, 3)
	public, err := links.Issue("load-1", models.RolePublic)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if w := doJSON(r, http.MethodGet, "/api/v1/track/"+public.Token, nil, nil); w.Code != http.StatusOK {
			t.Fatalf("read %d returned %d", i+1, w.Code)
		}
	}
	if w := doJSON(r, http.MethodGet, "/api/v1/track/"+public.Token, nil, nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("read past the window limit must 429, got %d", w.Code)
	}
}

func TestIssueLink(t *testing.T) {
	r, _, _ := newTestServer(t, 60)

	w := doJSON(r, http.MethodPost, "/api/v1/loads/load-1/links", gin.H{"role": "public"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("issue returned %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Token string          `json:"token"`
			Role  models.LinkRole `json:"role"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data.Token) != 43 || resp.Data.Role != models.RolePublic {
		t.Fatalf("unexpected link payload: %+v", resp.Data)
	}

	// unknown load
	if w := doJSON(r, http.MethodPost, "/api/v1/loads/no-such/links", gin.H{"role": "public"}, nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown load: got %d, want 404", w.Code)
	}
	// bad role fails binding-or-validation either way with a 400
	if w := doJSON(r, http.MethodPost, "/api/v1/loads/load-1/links", gin.H{"role": "admin"}, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad role: got %d, want 400", w.Code)
	}
}

func TestManualStopUpdate(t *testing.T) {
	r, db, links := newTestServer(t, 60)
	link, err := links.Issue("load-1", models.RoleDriver)
	if err != nil {
		t.Fatal(err)
	}
	hdr := map[string]string{handler.DriverTokenHeader: link.Token}

	arrived := time.Now().UTC().Truncate(time.Second)
	w := doJSON(r, http.MethodPatch, "/api/v1/driver/stops/stop-1",
		gin.H{"arrivedAt": arrived.Format(time.RFC3339)}, hdr)
	if w.Code != http.StatusOK {
		t.Fatalf("manual update returned %d: %s", w.Code, w.Body.String())
	}

	stop, err := repository.NewStopRepository(db).GetByID("stop-1")
	if err != nil {
		t.Fatal(err)
	}
	if !stop.ManualOverride || stop.ArrivedAt == nil {
		t.Fatalf("manual update must set override + arrival, got %+v", stop)
	}

	// departure before arrival is rejected with a reason
	w = doJSON(r, http.MethodPatch, "/api/v1/driver/stops/stop-1",
		gin.H{"departedAt": arrived.Add(-time.Hour).Format(time.RFC3339)}, hdr)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad departure: got %d, want 400", w.Code)
	}

	// a stop on another load is indistinguishable from a missing one
	if _, err := db.Exec(`INSERT INTO loads (id, status) VALUES ('load-2', 'in_transit')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO stops (id, load_id, sequence, type) VALUES ('stop-x', 'load-2', 1, 'pickup')`); err != nil {
		t.Fatal(err)
	}
	if w := doJSON(r, http.MethodPatch, "/api/v1/driver/stops/stop-x",
		gin.H{"arrivedAt": arrived.Format(time.RFC3339)}, hdr); w.Code != http.StatusNotFound {
		t.Errorf("foreign stop: got %d, want 404", w.Code)
	}
}
