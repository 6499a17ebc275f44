// Package response centraliza a escrita de respostas JSON e a tradução de erros
// tipados (internal/errors) para o corpo de erro padronizado da API.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"orderchat/internal/domain"
	apperror "orderchat/internal/errors"
	"orderchat/internal/pkg/logger"
)

// MaxBodyBytes limita o corpo das requisições JSON e os frames WebSocket.
const MaxBodyBytes = 64 * 1024

// DecodeJSON decodifica o corpo em dst, limitado a MaxBodyBytes.
// Corpo malformado ou grande demais vira BadRequestError.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.NewBadRequestError(fmt.Sprintf("Payload excede o limite de %d bytes.", MaxBodyBytes))
		}
		return apperror.NewBadRequestError("Payload JSON inválido.")
	}
	return nil
}

// JSON escreve data com o status informado.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data) //nolint:errcheck
	}
}

// Error traduz err com MapToHTTPStatus e escreve o domain.ErrorResponse.
// Falhas 5xx são registradas com o erro original; 4xx apenas em debug.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if log != nil {
		fields := map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   status,
			"category": category,
		}
		if status >= http.StatusInternalServerError {
			log.Error("Erro de Servidor.", err, fields)
		} else {
			log.Debug("Requisição rejeitada.", fields)
		}
	}

	JSON(w, status, domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}
