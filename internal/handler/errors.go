package handler

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError отображает доменную ошибку в HTTP-статус. Неожиданные ошибки логируются полностью,
// клиент получает обобщённое сообщение.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidState):
		status = http.StatusConflict
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeErrorMessage(w, status, publicMessage(err))
}

// publicMessage оставляет из текста ошибки только последнюю часть без внутренних префиксов операций.
func publicMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return msg
}
