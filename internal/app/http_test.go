package app

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/export"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/feed"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

func serve(t *testing.T, svc *Service, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	NewHTTPServer(svc, "*").Handler().ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse response %q: %v", rr.Body.String(), err)
	}
	return payload
}

func TestHealthEndpoint(t *testing.T) {
	svc := newTestService(t, &fakeSlots{}, Deps{})
	rr := serve(t, svc, http.MethodGet, "/api/health", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if ok := decodeJSON(t, rr)["ok"]; ok != true {
		t.Errorf("expected ok=true, got %v", ok)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}
}

func TestReadyEndpointReportsStoreFailure(t *testing.T) {
	slots := &fakeSlots{}
	svc := newTestService(t, slots, Deps{})

	rr := serve(t, svc, http.MethodGet, "/api/ready", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	slots.pingFn = func(context.Context) error { return errors.New("connection refused") }
	rr = serve(t, svc, http.MethodGet, "/api/ready", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
	response := decodeJSON(t, rr)
	if response["status"] != "not_ready" {
		t.Errorf("expected status=not_ready, got %v", response["status"])
	}
	store := response["checks"].(map[string]any)["store"].(map[string]any)
	if store["error"] != "connection refused" {
		t.Errorf("expected store error, got %v", store["error"])
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	svc := newTestService(t, &fakeSlots{}, Deps{})
	rr := serve(t, svc, http.MethodGet, "/api/health", "", "X-Request-ID", "req-42")
	if got := rr.Header().Get("X-Request-ID"); got != "req-42" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}

func TestOptionsAndUnknownRoutes(t *testing.T) {
	svc := newTestService(t, &fakeSlots{}, Deps{})

	rr := serve(t, svc, http.MethodOptions, "/api/standards", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}

	rr = serve(t, svc, http.MethodGet, "/api/nope", "")
	if rr.Code != http.StatusNotFound || decodeJSON(t, rr)["code"] != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestStandardsCRUD(t *testing.T) {
	svc := newTestService(t, &fakeSlots{standards: twoPeers()}, Deps{})

	rr := serve(t, svc, http.MethodGet, "/api/standards?q=60068-2-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list: %d", rr.Code)
	}
	if total := decodeJSON(t, rr)["total"]; total != float64(1) {
		t.Fatalf("expected 1 match, got %v", total)
	}

	rr = serve(t, svc, http.MethodPost, "/api/standards", `{"name":"EN 50155","category":"Railway Standard","expiryDate":"2029 (Stability)"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	created := decodeJSON(t, rr)
	id, _ := created["id"].(string)
	if id == "" || created["expiryDate"] != "2029 (Stability)" {
		t.Fatalf("unexpected created record %v", created)
	}

	rr = serve(t, svc, http.MethodPost, "/api/standards", `{"name":"en 50155"}`)
	if rr.Code != http.StatusConflict || decodeJSON(t, rr)["code"] != "DUPLICATE_NAME" {
		t.Fatalf("expected duplicate, got %d %s", rr.Code, rr.Body.String())
	}

	rr = serve(t, svc, http.MethodPut, "/api/standards/"+id, `{"version":"EN 50155:2021"}`)
	if rr.Code != http.StatusOK || decodeJSON(t, rr)["version"] != "EN 50155:2021" {
		t.Fatalf("edit: %d %s", rr.Code, rr.Body.String())
	}

	rr = serve(t, svc, http.MethodPut, "/api/standards/ghost", `{"version":"x"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	details := decodeJSON(t, rr)["details"].(map[string]any)
	if details["id"] != "ghost" {
		t.Fatalf("expected id in details, got %v", details)
	}

	rr = serve(t, svc, http.MethodPost, "/api/standards", `{"name":`)
	if rr.Code != http.StatusBadRequest || decodeJSON(t, rr)["error"] != "invalid JSON body" {
		t.Fatalf("expected invalid body, got %d %s", rr.Code, rr.Body.String())
	}

	rr = serve(t, svc, http.MethodDelete, "/api/standards/"+id, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: %d", rr.Code)
	}
	rr = serve(t, svc, http.MethodGet, "/api/standards/"+id, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected deleted record gone, got %d", rr.Code)
	}
}

func TestMoveEndpoints(t *testing.T) {
	svc := newTestService(t, &fakeSlots{standards: twoPeers()}, Deps{})

	rr := serve(t, svc, http.MethodPost, "/api/standards/a/move", `{"direction":"sideways"}`)
	if rr.Code != http.StatusBadRequest || decodeJSON(t, rr)["code"] != "INVALID_DIRECTION" {
		t.Fatalf("expected invalid direction, got %d %s", rr.Code, rr.Body.String())
	}

	rr = serve(t, svc, http.MethodPost, "/api/standards/a/move", `{"direction":"up"}`)
	if rr.Code != http.StatusOK || decodeJSON(t, rr)["moved"] != false {
		t.Fatalf("expected boundary no-op, got %d %s", rr.Code, rr.Body.String())
	}

	rr = serve(t, svc, http.MethodPost, "/api/categories/move", `{"label":"Other","direction":"up"}`)
	if rr.Code != http.StatusOK || decodeJSON(t, rr)["moved"] != true {
		t.Fatalf("expected category move, got %d %s", rr.Code, rr.Body.String())
	}

	rr = serve(t, svc, http.MethodPost, "/api/subcategories/move", `{"label":" ","direction":"up"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected validation error, got %d", rr.Code)
	}
}

func TestApplyEndpointReturnsCounts(t *testing.T) {
	svc := newTestService(t, &fakeSlots{standards: twoPeers()}, Deps{})

	body := `{"updates":[{"targetId":"b","kind":"UPDATE","changeType":"VERSION","changes":[{"field":"version","old":"Ed. 6.0","new":"Ed. 7.0"}]}]}`
	rr := serve(t, svc, http.MethodPost, "/api/updates/apply", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("apply: %d %s", rr.Code, rr.Body.String())
	}
	counts := decodeJSON(t, rr)
	if counts["newCount"] != float64(0) || counts["updateCount"] != float64(1) {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestRunVerifyEndpoint(t *testing.T) {
	bare := newTestService(t, &fakeSlots{}, Deps{})
	rr := serve(t, bare, http.MethodPost, "/api/run-verify", "")
	if rr.Code != http.StatusServiceUnavailable || decodeJSON(t, rr)["status"] != "error" {
		t.Fatalf("expected error envelope, got %d %s", rr.Code, rr.Body.String())
	}

	svc := newTestService(t, &fakeSlots{standards: twoPeers()}, Deps{Verify: &fakeVerify{
		triggerFn: func(context.Context, []standard.Standard) (feed.Report, error) {
			return mismatchReport(), nil
		},
		latestFn: func(context.Context) (feed.Report, error) {
			return mismatchReport(), nil
		},
	}})
	rr = serve(t, svc, http.MethodPost, "/api/run-verify", "")
	if rr.Code != http.StatusOK || decodeJSON(t, rr)["status"] != "success" {
		t.Fatalf("expected success, got %d %s", rr.Code, rr.Body.String())
	}

	rr = serve(t, svc, http.MethodGet, "/verification_results.json?t=123", "")
	if rr.Code != http.StatusOK || decodeJSON(t, rr)["timestamp"] != "2026-10-18T02:00:00Z" {
		t.Fatalf("expected stored report, got %d %s", rr.Code, rr.Body.String())
	}

	failing := newTestService(t, &fakeSlots{}, Deps{Verify: &fakeVerify{
		triggerFn: func(context.Context, []standard.Standard) (feed.Report, error) {
			return feed.Report{}, errors.New("chromium crashed")
		},
	}})
	rr = serve(t, failing, http.MethodPost, "/api/run-verify", "")
	if rr.Code != http.StatusInternalServerError || decodeJSON(t, rr)["message"] != "chromium crashed" {
		t.Fatalf("expected failure message, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestVerificationReportMissing(t *testing.T) {
	svc := newTestService(t, &fakeSlots{}, Deps{Verify: &fakeVerify{}})
	rr := serve(t, svc, http.MethodGet, "/api/verification-report", "")
	if rr.Code != http.StatusNotFound || decodeJSON(t, rr)["code"] != "NO_REPORT" {
		t.Fatalf("expected NO_REPORT, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestSyncDataEndpoint(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc := newTestService(t, &fakeSlots{}, Deps{Snapshots: &fakeSnapshots{}})
	svc.cfg.SyncTokenHash = string(hash)
	body := `[{"id":"a","name":"IEC 60068-2-1"}]`

	rr := serve(t, svc, http.MethodPost, "/api/sync-data", body)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	rr = serve(t, svc, http.MethodPost, "/api/sync-data", body, "Authorization", "Bearer s3cret")
	if rr.Code != http.StatusOK {
		t.Fatalf("sync: %d %s", rr.Code, rr.Body.String())
	}
	response := decodeJSON(t, rr)
	if response["status"] != "success" || response["message"] != "Synced 1 standards" {
		t.Fatalf("unexpected response %v", response)
	}

	rr = serve(t, svc, http.MethodPost, "/api/sync-data", `{"id":"a"}`, "Authorization", "Bearer s3cret")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected array body to be required, got %d", rr.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	exporter := &fakeExporter{exportFn: func(_ context.Context, req export.Request) (*export.Result, error) {
		if req.Format == export.FormatPDF {
			return nil, export.ErrPDFDependencyMissing
		}
		return &export.Result{Data: []byte("id,name\n"), Filename: "dqa-standards-20261019.csv", MimeType: "text/csv; charset=utf-8"}, nil
	}}
	svc := newTestService(t, &fakeSlots{standards: twoPeers()}, Deps{Exporter: exporter})

	rr := serve(t, svc, http.MethodGet, "/api/export.csv", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "dqa-standards-20261019.csv") {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rr.Body.String() != "id,name\n" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}

	rr = serve(t, svc, http.MethodGet, "/api/export.pdf", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without chromium, got %d", rr.Code)
	}

	rr = serve(t, svc, http.MethodGet, "/api/export.docx", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected unknown format to 404, got %d", rr.Code)
	}
}

func TestEventsStreamChanges(t *testing.T) {
	svc := newTestService(t, &fakeSlots{standards: twoPeers()}, Deps{})
	server := httptest.NewServer(NewHTTPServer(svc, "*").Handler())
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/events", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, ": connected") {
		t.Fatalf("expected connected comment, got %q %v", line, err)
	}

	if err := svc.Delete(context.Background(), "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for {
		line, err = reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if strings.HasPrefix(line, "event: ") {
			break
		}
	}
	if strings.TrimSpace(line) != "event: changed" {
		t.Fatalf("unexpected event line %q", line)
	}
	data, _ := reader.ReadString('\n')
	if !strings.Contains(data, `"op":"delete"`) {
		t.Fatalf("unexpected data line %q", data)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	svc := newTestService(t, &fakeSlots{}, Deps{})
	rr := serve(t, svc, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "dqa_") {
		t.Fatalf("expected metrics exposition, got %d", rr.Code)
	}
}
