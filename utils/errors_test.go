package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"summarysnap/internal/apperr"

	"github.com/gin-gonic/gin"
)

var errBadInput = errors.New("invalid input")

func TestRespondWithPipelineError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", fmt.Errorf("%w: unknown style", errBadInput), http.StatusBadRequest, "bad_request"},
		{"load", apperr.Errorf(apperr.ErrLoad, "pdf.load", "not a pdf"), http.StatusUnprocessableEntity, "load_error"},
		{"retrieval", apperr.Errorf(apperr.ErrRetrieval, "ask", "no document"), http.StatusConflict, "retrieval_error"},
		{"config", apperr.Errorf(apperr.ErrConfig, "provider", "missing key"), http.StatusServiceUnavailable, "config_error"},
		{"embedding", apperr.New(apperr.ErrEmbedding, "embed", errors.New("quota")), http.StatusBadGateway, "embedding_error"},
		{"generation", apperr.New(apperr.ErrGeneration, "chat", errors.New("blocked")), http.StatusBadGateway, "generation_error"},
		{"index", apperr.Errorf(apperr.ErrIndex, "index", "dimension mismatch"), http.StatusInternalServerError, "index_error"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			RespondWithPipelineError(c, tt.err, errBadInput)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.ErrorCode != tt.code {
				t.Errorf("error_code = %q, want %q", resp.ErrorCode, tt.code)
			}
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"Bearer abc": "abc",
		"bearer abc": "",
		"Bearer a b": "",
		"Token abc":  "",
		"Bearerabc":  "",
	}
	for header, want := range tests {
		if got := ExtractTokenFromHeader(header); got != want {
			t.Errorf("ExtractTokenFromHeader(%q) = %q, want %q", header, got, want)
		}
	}
}
