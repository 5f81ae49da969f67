package frontend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func postForm(t *testing.T, f *WebFrontend, message string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"message": {message}}
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.Handler().ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, f *WebFrontend, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexRendersForm(t *testing.T) {
	f := NewWebFrontend(newService(t, 4), zaptest.NewLogger(t), testServerConfig())

	rec := httptest.NewRecorder()
	f.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `name="message"`) || !strings.Contains(body, "Predict") {
		t.Fatalf("form missing from page")
	}
	if strings.Contains(body, "disabled>") || strings.Contains(body, `id="unavailable"`) {
		t.Fatalf("form must be enabled when the model is loaded")
	}
}

func TestIndexDisablesFormWhenUnavailable(t *testing.T) {
	f := NewWebFrontend(newUnavailableService(t), zaptest.NewLogger(t), testServerConfig())

	rec := httptest.NewRecorder()
	f.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `id="unavailable"`) || !strings.Contains(body, "classifier") {
		t.Fatalf("expected load error banner, got %s", body)
	}
	if strings.Count(body, "disabled>") != 2 {
		t.Fatalf("expected disabled form")
	}
}

func TestPredictForm(t *testing.T) {
	f := NewWebFrontend(newService(t, 4), zaptest.NewLogger(t), testServerConfig())

	tests := []struct {
		name    string
		message string
		status  int
		want    string
		notWant string
	}{
		{"spam", "FREE money!!! Claim your PRIZE", http.StatusOK, `id="verdict-spam"`, `id="verdict-ham"`},
		{"not spam", "Lunch tomorrow?", http.StatusOK, `id="verdict-ham"`, `id="verdict-spam"`},
		{"blank", "   ", http.StatusBadRequest, emptyInputMessage, "verdict-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(t, f, tt.message)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			body := rec.Body.String()
			if !strings.Contains(body, tt.want) {
				t.Fatalf("expected %q in body", tt.want)
			}
			if strings.Contains(body, tt.notWant) {
				t.Fatalf("unexpected %q in body", tt.notWant)
			}
		})
	}
}

func TestPredictFormUnavailable(t *testing.T) {
	f := NewWebFrontend(newUnavailableService(t), zaptest.NewLogger(t), testServerConfig())

	rec := postForm(t, f, "free money")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "verdict-") {
		t.Fatalf("no verdict may be rendered without a model")
	}
}

func TestPredictAPI(t *testing.T) {
	f := NewWebFrontend(newService(t, 4), zaptest.NewLogger(t), testServerConfig())

	rec := postJSON(t, f, `{"message": "FREE money!!! Claim your PRIZE"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp predictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Verdict != "spam" || !resp.IsSpam || resp.Label != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Normalized != "free monei claim prize" {
		t.Fatalf("unexpected normalized text %q", resp.Normalized)
	}
	if resp.Model != "sms-linear" || resp.ProcessingID == "" || resp.Cached {
		t.Fatalf("unexpected metadata %+v", resp)
	}

	rec = postJSON(t, f, `{"message": "Lunch tomorrow?"}`)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Verdict != "not_spam" || resp.IsSpam {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestPredictAPIErrors(t *testing.T) {
	tests := []struct {
		name    string
		frontFn func(t *testing.T) *WebFrontend
		body    string
		status  int
		errText string
	}{
		{
			name:    "empty message",
			frontFn: func(t *testing.T) *WebFrontend { return NewWebFrontend(newService(t, 4), zaptest.NewLogger(t), testServerConfig()) },
			body:    `{"message": ""}`,
			status:  http.StatusBadRequest,
			errText: "no input provided",
		},
		{
			name:    "malformed json",
			frontFn: func(t *testing.T) *WebFrontend { return NewWebFrontend(newService(t, 4), zaptest.NewLogger(t), testServerConfig()) },
			body:    `{"message": `,
			status:  http.StatusBadRequest,
			errText: "invalid request body",
		},
		{
			name:    "artifacts unavailable",
			frontFn: func(t *testing.T) *WebFrontend { return NewWebFrontend(newUnavailableService(t), zaptest.NewLogger(t), testServerConfig()) },
			body:    `{"message": "free money"}`,
			status:  http.StatusServiceUnavailable,
			errText: "model artifacts unavailable",
		},
		{
			name:    "dimension mismatch",
			frontFn: func(t *testing.T) *WebFrontend { return NewWebFrontend(newService(t, 3), zaptest.NewLogger(t), testServerConfig()) },
			body:    `{"message": "free money"}`,
			status:  http.StatusInternalServerError,
			errText: failureMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, tt.frontFn(t), tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Error != tt.errText {
				t.Fatalf("error = %q, want %q", resp.Error, tt.errText)
			}
		})
	}
}

func TestPredictAPIBodyLimit(t *testing.T) {
	f := NewWebFrontend(newService(t, 4), zaptest.NewLogger(t), testServerConfig())

	rec := postJSON(t, f, `{"message": "`+strings.Repeat("a", 4096)+`"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		frontF func(t *testing.T) *WebFrontend
		status int
		want   string
	}{
		{"ready", func(t *testing.T) *WebFrontend { return NewWebFrontend(newService(t, 4), zaptest.NewLogger(t), testServerConfig()) }, http.StatusOK, "ok"},
		{"unavailable", func(t *testing.T) *WebFrontend { return NewWebFrontend(newUnavailableService(t), zaptest.NewLogger(t), testServerConfig()) }, http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.frontF(t).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			var resp map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp["status"] != tt.want {
				t.Fatalf("status field = %q, want %q", resp["status"], tt.want)
			}
		})
	}
}
