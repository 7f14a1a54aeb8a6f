package handler

import (
	"errors"
	"net/http"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/serializer"
	"github.com/eternalmoments/backend/internal/modules/service"
	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated user installed by the auth
// middleware.
func currentUser(c *gin.Context) (*model.User, bool) {
	u, ok := c.MustGet("user").(*model.User)
	return u, ok
}

// writeServiceErr maps well-known service errors onto HTTP statuses.
// Anything unrecognized is a 500.
func writeServiceErr(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, serializer.ParamErr(verr.Error(), err))
	case errors.Is(err, service.ErrCapsuleNotFound),
		errors.Is(err, service.ErrMemoryNotFound),
		errors.Is(err, service.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr(err.Error(), err))
	case errors.Is(err, service.ErrNoMediaUploaded):
		c.JSON(http.StatusBadGateway, serializer.Err(http.StatusBadGateway, err.Error(), err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}
