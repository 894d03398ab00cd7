// Package handler exposes the services over HTTP with gin.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/flicky/go-shop-services/internal/apperr"
	"github.com/flicky/go-shop-services/internal/dto"
)

// writeError maps err onto its HTTP status. Internal errors are attached to
// the context for the request logger and answered with a generic message.
func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal || kind == apperr.KindUpstreamUnavailable {
		_ = c.Error(err)
	}
	c.JSON(kind.HTTPStatus(), dto.ErrorResponse{Error: apperr.Message(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func bindPage(c *gin.Context) (dto.PageRequest, bool) {
	var page dto.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		badRequest(c, err.Error())
		return page, false
	}
	return page, true
}
