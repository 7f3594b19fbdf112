// Package handlers contains the HTTP handlers for the REST API.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"smartfetch/pkg/common"
	apperrors "smartfetch/pkg/errors"
)

// respondQueryError maps a query bus failure onto the response envelope.
// Domain errors carry their own status code and error code; bus validation
// failures become 400s; anything else is a 500.
func respondQueryError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		common.RespondDomainError(w, domainErr, "")
		return
	}

	if strings.Contains(err.Error(), "validation failed") {
		common.RespondError(w, http.StatusBadRequest, common.CodeValidationError, err.Error())
		return
	}

	logger.Error("query failed", zap.Error(err))
	common.RespondError(w, http.StatusInternalServerError, common.CodeInternalError, "Internal server error")
}
