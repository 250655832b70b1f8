package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"fortunes-backend/internal/domains/fortune"
	"fortunes-backend/internal/shared/response"
	"fortunes-backend/pkg/tsid"
)

// entityID decodes the 13-character path id. Malformed ids are client
// errors, not lookups that happen to miss.
func entityID(c *gin.Context) (int64, bool) {
	id, err := tsid.Decode(c.Param("id"))
	if err != nil {
		response.Unprocessable(c, "invalid identifier")
		return 0, false
	}
	return id, true
}

// validationDetail keeps ozzo's field-to-message map intact in the
// response body and falls back to the plain message otherwise.
func validationDetail(err error) interface{} {
	var errs validation.Errors
	if errors.As(err, &errs) {
		return errs
	}
	return err.Error()
}

// respondError maps domain errors onto status codes. Anything that is
// neither a not-found nor a conflict is an internal failure and must not
// leak storage details to the client.
func respondError(c *gin.Context, err error) {
	status := fortune.ToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Str("request_id", c.GetString("request_id")).
			Err(err).
			Msg("request failed")
		response.InternalServerError(c)
		return
	}
	response.Detail(c, status, err.Error())
}
