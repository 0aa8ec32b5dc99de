package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

// BenchmarkBindStrictJSON measures strict decoding of a typical task body.
func BenchmarkBindStrictJSON(b *testing.B) {
	e := echo.New()
	payload, _ := json.Marshal(map[string]any{
		"title":       "Write release notes",
		"description": strings.Repeat("details ", 64),
		"priority":    "high",
		"dueDate":     "2026-03-01",
	})

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		var body CreateTaskRequest
		if err := bindStrictJSON(c, &body); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRespondOK measures the envelope serialization overhead.
func BenchmarkRespondOK(b *testing.B) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	data := map[string]string{"name": "Roadmap", "status": "active"}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		c := e.NewContext(req, httptest.NewRecorder())
		_ = respondOK(c, data)
	}
}
