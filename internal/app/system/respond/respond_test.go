package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"go.uber.org/zap"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Created(rec, map[string]string{"id": "1"}, "created")

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	body := decode(t, rec)
	if body["success"] != true || body["message"] != "created" {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["error"]; ok {
		t.Error("success envelope carries error field")
	}
}

func TestError_Conflict(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/x", nil)
	respond.Error(rec, req, zap.NewNop(), apierr.Conflict("schedule conflict", map[string]any{"conflict": map[string]string{"id": "abc"}}))

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	body := decode(t, rec)
	if body["success"] != false || body["error"] != "schedule conflict" {
		t.Errorf("body = %v", body)
	}
	details, _ := body["details"].(map[string]any)
	if details == nil || details["conflict"] == nil {
		t.Errorf("details missing: %v", body)
	}
}

func TestError_InternalHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/x", nil)
	respond.Error(rec, req, zap.NewNop(), errors.New("mongo: connection refused at 10.0.0.3"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "internal server error" {
		t.Errorf("error = %v", got)
	}
}
