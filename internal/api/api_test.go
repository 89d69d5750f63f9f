package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/raido/internal/analysis"
	"github.com/starford/raido/internal/board"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/layers"
	"github.com/starford/raido/internal/testutil"
)

const testNetlist = `(export (version "E")
  (components
    (comp (ref "R1") (value "10k") (footprint "Resistor_SMD:R_0603"))
    (comp (ref "C1") (value "100n") (footprint "Capacitor_SMD:C_0603"))
    (comp (ref "U1") (value "STM32F103") (footprint "Package_QFP:LQFP-48")))
  (nets
    (net (code "1") (name "N1")
      (node (ref "C1") (pin "1") (pintype "passive"))
      (node (ref "R1") (pin "1") (pintype "passive")))
    (net (code "2") (name "N2")
      (node (ref "R1") (pin "2") (pintype "passive"))
      (node (ref "U1") (pin "10") (pintype "input")))
    (net (code "3") (name "VCC")
      (node (ref "C1") (pin "2") (pintype "passive"))
      (node (ref "U1") (pin "1") (pintype "power_in")))))
`

// testEnv sets up a temp workspace, SQLite catalog, service, and router.
// authToken="" means auth disabled.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()

	_, fs := testutil.TestWorkspace(t)
	if err := fs.Write("main.net", []byte(testNetlist)); err != nil {
		t.Fatal(err)
	}

	db := testutil.TestDB(t)
	if err := index.Sync(db, fs, slog.New(slog.NewJSONHandler(io.Discard, nil))); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	highlights := board.NewStore(fs, layers.DefaultPool())
	svc := analysis.NewService(fs, db, highlights, analysis.Config{})
	return NewRouter(svc, authToken != "", authToken, nil)
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthDisabledAllowsAll(t *testing.T) {
	router := testEnv(t, "")
	w := doJSON(t, router, http.MethodGet, "/designs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestAuthEnabledRejectsMissingToken(t *testing.T) {
	router := testEnv(t, "secret")

	w := doJSON(t, router, http.MethodGet, "/designs", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/designs", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status with token = %d, want 200", rec.Code)
	}
}

func TestListDesigns(t *testing.T) {
	router := testEnv(t, "")
	w := doJSON(t, router, http.MethodGet, "/designs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp DesignListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Designs) != 1 || resp.Designs[0].Path != "main.net" {
		t.Errorf("designs = %+v", resp.Designs)
	}
}

func TestAnalyze(t *testing.T) {
	router := testEnv(t, "")
	w := doJSON(t, router, http.MethodGet, "/analyze?design=main.net", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	var sum Summary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Components != 3 || sum.Nets != 3 {
		t.Errorf("summary = %+v", sum)
	}

	// Missing design param.
	if w := doJSON(t, router, http.MethodGet, "/analyze", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing param status = %d, want 400", w.Code)
	}
	// Unknown design.
	if w := doJSON(t, router, http.MethodGet, "/analyze?design=nope.net", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown design status = %d, want 404", w.Code)
	}
}

func TestGetComponent(t *testing.T) {
	router := testEnv(t, "")
	w := doJSON(t, router, http.MethodGet, "/components/U1?design=main.net", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	var info ComponentDetail
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.Ref != "U1" || info.Kind != "ic" {
		t.Errorf("info = %+v", info)
	}

	if w := doJSON(t, router, http.MethodGet, "/components/R99?design=main.net", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown ref status = %d, want 404", w.Code)
	}
}

func TestNeighborsAndPaths(t *testing.T) {
	router := testEnv(t, "")

	w := doJSON(t, router, http.MethodGet, "/neighbors?design=main.net&ref=C1&radius=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("neighbors status = %d: %s", w.Code, w.Body)
	}
	var nr NeighborsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &nr); err != nil {
		t.Fatal(err)
	}
	if len(nr.Neighbors) != 3 {
		t.Errorf("neighbors = %v", nr.Neighbors)
	}

	w = doJSON(t, router, http.MethodGet, "/paths?design=main.net&from=C1&to=U1&include_power=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("paths status = %d: %s", w.Code, w.Body)
	}
	var pr PathsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &pr); err != nil {
		t.Fatal(err)
	}
	if len(pr.Paths) == 0 || len(pr.Paths[0].Hops) != 1 {
		t.Errorf("paths = %+v", pr.Paths)
	}
}

func TestHighlightLifecycle(t *testing.T) {
	router := testEnv(t, "")

	create := HighlightRequest{Design: "main.net", PathID: "p1", Nets: []string{"N1", "N2"}}
	w := doJSON(t, router, http.MethodPost, "/highlights", create)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body)
	}
	var asg layers.Assignment
	if err := json.Unmarshal(w.Body.Bytes(), &asg); err != nil {
		t.Fatal(err)
	}
	if asg.Layer == "" || len(asg.Tracks) != 2 {
		t.Errorf("assignment = %+v", asg)
	}

	// Duplicate path id conflicts.
	if w := doJSON(t, router, http.MethodPost, "/highlights", create); w.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/highlights?design=main.net", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var listed HighlightsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed.Highlights) != 1 {
		t.Errorf("highlights = %+v", listed.Highlights)
	}

	if w := doJSON(t, router, http.MethodDelete, "/highlights/p1?design=main.net", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", w.Code)
	}
	if w := doJSON(t, router, http.MethodDelete, "/highlights/p1?design=main.net", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestSearch(t *testing.T) {
	router := testEnv(t, "")
	w := doJSON(t, router, http.MethodGet, "/search?q=STM32F103", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	var resp SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Ref != "U1" {
		t.Errorf("results = %+v", resp.Results)
	}

	if w := doJSON(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing query status = %d, want 400", w.Code)
	}
}

func TestInvalidate(t *testing.T) {
	router := testEnv(t, "")
	w := doJSON(t, router, http.MethodPost, "/cache/invalidate", InvalidateRequest{Design: "main.net"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if w := doJSON(t, router, http.MethodPost, "/cache/invalidate", InvalidateRequest{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", w.Code)
	}
}

func TestPatternsEndpoint(t *testing.T) {
	router := testEnv(t, "")
	w := doJSON(t, router, http.MethodGet, "/patterns?design=main.net", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
}
