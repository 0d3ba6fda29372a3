package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseBuilder(t *testing.T) {
	tests := []struct {
		name       string
		build      *ResponseBuilder
		wantStatus int
		wantBody   map[string]string
		wantHeader map[string]string
	}{
		{
			name:       "status payload",
			build:      NewResponse().JSON(statusPayload("ignored")),
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"status": "ignored"},
		},
		{
			name:       "bad request",
			build:      BadRequestError("invalid update"),
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]string{"error": "invalid update"},
		},
		{
			name:       "unauthorized",
			build:      UnauthorizedError(),
			wantStatus: http.StatusUnauthorized,
			wantBody:   map[string]string{"error": "unauthorized"},
		},
		{
			name:       "internal error",
			build:      InternalServerError("send failed"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]string{"error": "send failed"},
		},
		{
			name:       "method not allowed has no body",
			build:      MethodNotAllowedError("POST"),
			wantStatus: http.StatusMethodNotAllowed,
			wantHeader: map[string]string{"Allow": "POST"},
		},
		{
			name:       "custom header",
			build:      ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Header("Retry-After", "60"),
			wantStatus: http.StatusTooManyRequests,
			wantBody:   map[string]string{"error": "rate limit exceeded"},
			wantHeader: map[string]string{"Retry-After": "60"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.build.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			for k, v := range tt.wantHeader {
				if got := w.Header().Get(k); got != v {
					t.Errorf("Header %s = %q, want %q", k, got, v)
				}
			}
			if tt.wantBody == nil {
				if w.Body.Len() != 0 {
					t.Errorf("expected empty body, got %q", w.Body.String())
				}
				return
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}
			var got map[string]string
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			for k, v := range tt.wantBody {
				if got[k] != v {
					t.Errorf("body[%s] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
