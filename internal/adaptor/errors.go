package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"marketplace-api/internal/usecase"
	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

// writeServiceError maps a service error onto the response envelope. Anything
// that is not a *usecase.Error is logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var svcErr *usecase.Error
	if !errors.As(err, &svcErr) {
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	log.Warn(operation+" failed",
		zap.String("kind", string(svcErr.Kind)),
		zap.String("reason", svcErr.Message))

	var details any
	if len(svcErr.Fields) > 0 {
		details = svcErr.Fields
	}

	switch svcErr.Kind {
	case usecase.KindNotFound:
		utils.ResponseNotFound(w, svcErr.Message)
	default:
		// validation, conflict, expired, unauthorized and forbidden all surface as 400
		utils.ResponseBadRequest(w, svcErr.Message, details)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}
