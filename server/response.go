package server

import (
	"errors"
	"net/http"

	"github.com/KOMKZ/go-yogan-boot/auth"
	"github.com/KOMKZ/go-yogan-boot/errcode"
	"github.com/KOMKZ/go-yogan-boot/validator"
	"github.com/gin-gonic/gin"
)

// Response unified JSON envelope; Code is 0 on success or the layered error code
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

// OK 200 with data
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Msg: "success", Data: data})
}

// Error writes err with a status derived from its code
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	resp := Response{Code: status, Msg: "internal server error"}

	var layered *errcode.LayeredError
	if errors.As(err, &layered) {
		status = statusOf(layered)
		resp.Code = layered.Code()
		resp.Msg = layered.Message()
		if fields, ok := layered.Data()["fields"]; ok {
			resp.Data = gin.H{"fields": fields}
		}
	}
	c.AbortWithStatusJSON(status, resp)
}

func statusOf(err *errcode.LayeredError) int {
	switch {
	case errors.Is(err, validator.ErrValidation), errors.Is(err, auth.ErrPasswordPolicy):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenRevoked),
		errors.Is(err, auth.ErrTokenType):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func noRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, Response{
		Code: http.StatusNotFound,
		Msg:  "route not found: " + c.Request.Method + " " + c.Request.URL.Path,
	})
}

func noMethod(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, Response{
		Code: http.StatusMethodNotAllowed,
		Msg:  "method not allowed: " + c.Request.Method + " " + c.Request.URL.Path,
	})
}
