package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderchat/internal/domain"
	apperror "orderchat/internal/errors"
	"orderchat/internal/pkg/logger"
	"orderchat/internal/pkg/response"
)

func TestError_WritesStandardBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/x", nil)

	response.Error(rec, req, logger.NewLogger("debug"), apperror.NewNotFoundError("Pedido"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.Code)
	assert.Equal(t, apperror.CategoryNotFound, body.Category)
}

func TestError_InternalIsGeneric(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)

	response.Error(rec, req, nil, errors.New("pq: senha incorreta para usuário postgres"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "postgres")
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Content string `json:"content"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"válido", `{"content":"Olá"}`, ""},
		{"malformado", `{"content":`, "Payload JSON inválido."},
		{"acima do limite", `{"content":"` + strings.Repeat("a", response.MaxBodyBytes) + `"}`, "Payload excede o limite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/chatrooms/x/messages", strings.NewReader(tt.body))

			var dst payload
			err := response.DecodeJSON(rec, req, &dst)

			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "Olá", dst.Content)
				return
			}
			require.Error(t, err)
			var appErr *apperror.BadRequestError
			require.True(t, errors.As(err, &appErr))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
