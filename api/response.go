package api

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fogsched/errors"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// respondOK sends a 200 response wrapping data.
func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// respondError derives the status and structured body from a SchedError,
// or sends a generic 500 for anything else.
func respondError(c *gin.Context, err error) {
	var schedErr *errors.SchedError
	if stderrors.As(err, &schedErr) {
		status := schedErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		c.JSON(status, schedErr.ToResponse())
		return
	}
	c.JSON(http.StatusInternalServerError, errors.Internal(err).ToResponse())
}
