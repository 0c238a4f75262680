package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/p7r0x7/md5trace"
	"github.com/p7r0x7/md5trace/internal/config"
	"github.com/p7r0x7/md5trace/internal/log"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

func newTestServer(t *testing.T, maxInput int) http.Handler {
	t.Helper()
	log.DisableLogs()
	cfg := config.Default()
	cfg.Server.MaxInput = maxInput
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s.Handler()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDigest(t *testing.T) {
	h := newTestServer(t, 1<<10)
	rec := do(h, http.MethodPost, "/api/v1/digest", `{"text":"message digest"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var resp struct{ Data DigestResponse }
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Digest.String() != "f96b697d7cb7938d525a2f31aaf161d0" || resp.Data.Bytes != 14 || resp.Data.Blocks != 1 {
		t.Errorf("got %+v", resp.Data)
	}
}

func TestDigest_Hex(t *testing.T) {
	h := newTestServer(t, 1<<10)
	/* Not UTF-8, so only reachable as hex. */
	rec := do(h, http.MethodPost, "/api/v1/digest", `{"hex":"ff00fe"}`)
	var resp struct{ Data DigestResponse }
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if want := md5trace.Sum([]byte{0xff, 0x00, 0xfe}); resp.Data.Digest != want {
		t.Errorf("digest %s, want %s", resp.Data.Digest, want)
	}
}

func TestDigest_BadRequests(t *testing.T) {
	h := newTestServer(t, 1<<10)
	for _, body := range []string{`{}`, `{"text":"a","hex":"61"}`, `{"hex":"6"}`, `not json`} {
		rec := do(h, http.MethodPost, "/api/v1/digest", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", body, rec.Code)
		}
		var resp ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp.Error.Code != ErrCodeInvalidRequest {
			t.Errorf("%s: error body %+v, %v", body, resp, err)
		}
	}
}

func TestTooLarge(t *testing.T) {
	h := newTestServer(t, 16)
	rec := do(h, http.MethodPost, "/api/v1/trace", `{"text":"`+strings.Repeat("x", 17)+`"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status %d", rec.Code)
	}
	/* Far past the body limit as well. */
	rec = do(h, http.MethodPost, "/api/v1/trace", `{"text":"`+strings.Repeat("x", 1<<12)+`"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status %d", rec.Code)
	}
	if rec = do(h, http.MethodPost, "/api/v1/trace", `{"text":"`+strings.Repeat("x", 16)+`"}`); rec.Code != http.StatusOK {
		t.Errorf("status %d at the limit", rec.Code)
	}
}

func TestTrace(t *testing.T) {
	h := newTestServer(t, 1<<10)
	body := `{"text":"` + strings.Repeat("ab", 40) + `"}`
	rec := do(h, http.MethodPost, "/api/v1/trace", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	etag := rec.Header().Get("ETag")
	if len(etag) != 18 {
		t.Errorf("ETag %q", etag)
	}
	var resp struct{ Data md5trace.FullTrace }
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	_, want, _ := md5trace.ComputeDigestWithTrace(strings.Repeat("ab", 40))
	if len(resp.Data.Blocks) != 2 || resp.Data.Digest != want.Digest {
		t.Fatalf("%d blocks, digest %s", len(resp.Data.Blocks), resp.Data.Digest)
	}
	if resp.Data.Blocks[1].Steps[63] != want.Blocks[1].Steps[63] {
		t.Error("last step differs after the round trip")
	}
	if again := do(h, http.MethodPost, "/api/v1/trace", body); again.Header().Get("ETag") != etag {
		t.Error("ETag is not stable")
	}
}

func TestStep(t *testing.T) {
	h := newTestServer(t, 1<<10)
	rec := do(h, http.MethodPost, "/api/v1/trace/blocks/0/steps/17", `{"text":"abc"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var resp struct{ Data StepResponse }
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	s := resp.Data.Step
	if s.T != 17 || s.Round != 1 || s.Index != 1 || s.Func != md5trace.G || s.K != 6 || s.Shift != 9 {
		t.Errorf("step %+v", s)
	}
	if resp.Data.Initial != md5trace.Initial {
		t.Errorf("initial %v", resp.Data.Initial)
	}

	for target, code := range map[string]int{
		"/api/v1/trace/blocks/1/steps/0":  http.StatusNotFound,
		"/api/v1/trace/blocks/0/steps/64": http.StatusNotFound,
		"/api/v1/trace/blocks/0/steps/-1": http.StatusNotFound,
		"/api/v1/trace/blocks/x/steps/0":  http.StatusBadRequest,
		"/api/v1/trace/blocks/0/steps/y":  http.StatusBadRequest,
	} {
		if rec := do(h, http.MethodPost, target, `{"text":"abc"}`); rec.Code != code {
			t.Errorf("%s: status %d, want %d", target, rec.Code, code)
		}
	}
}

func TestRender(t *testing.T) {
	h := newTestServer(t, 1<<10)
	rec := do(h, http.MethodPost, "/api/v1/render?style=tree", `{"text":"abc"}`)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("status %d, type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rec.Body.String(), "MD5 900150983cd24fb0d6963f7d28e17f72\n") {
		t.Errorf("body %.60q", rec.Body.String())
	}
	rec = do(h, http.MethodPost, "/api/v1/render?style=text", `{"text":"abc"}`)
	if !strings.Contains(rec.Body.String(), "=== Block 1 ===") {
		t.Error("text style not applied")
	}
	if rec = do(h, http.MethodPost, "/api/v1/render?style=flat", `{"text":"abc"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown style: status %d", rec.Code)
	}
}

func TestCanceled(t *testing.T) {
	h := newTestServer(t, 1<<10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/trace", strings.NewReader(`{"text":"abc"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, 0)
	rec := do(h, http.MethodGet, "/api/v1/health", "")
	var resp struct{ Data HealthResponse }
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || !resp.Data.Healthy {
		t.Errorf("status %d, %+v", rec.Code, resp.Data)
	}
}

func TestRecovery(t *testing.T) {
	log.DisableLogs()
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := do(h, http.MethodGet, "/", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status %d", rec.Code)
	}
}
