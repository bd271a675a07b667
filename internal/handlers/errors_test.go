package handlers_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/teraonavi/navi-admin/internal/utils"
)

// TestUnknownRouteReturnsNotFoundEnvelope checks that an unrouted path
// falls through to the standard 404 envelope.
func TestUnknownRouteReturnsNotFoundEnvelope(t *testing.T) {
	env := setupTestApp(t)

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/nope", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	var body utils.ErrorResponseStruct
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != 404 || body.Ok {
		t.Errorf("envelope = %+v, want status 404 and ok false", body)
	}
	if body.URL != "/api/nope" {
		t.Errorf("envelope url = %q, want /api/nope", body.URL)
	}
}

// TestErrorEnvelopeCarriesType checks the global error handler's
// envelope on an authentication failure.
func TestErrorEnvelopeCarriesType(t *testing.T) {
	env := setupTestApp(t)

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/applications", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	var body utils.ErrorResponseStruct
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Type != "authentication" {
		t.Errorf("envelope type = %q, want authentication", body.Type)
	}
	if body.Status != 401 || body.Ok {
		t.Errorf("envelope = %+v, want status 401 and ok false", body)
	}
}
