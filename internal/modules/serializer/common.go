package serializer

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var log = zap.NewNop()

// SetLogger installs the process logger used for 5xx responses.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// Response
type Response struct {
	Code  int         `json:"code"`
	Data  interface{} `json:"data,omitempty"`
	Msg   string      `json:"msg"`
	Error string      `json:"error,omitempty"`
}

// Err
func Err(errCode int, msg string, err error) Response {
	res := Response{
		Code: errCode,
		Msg:  msg,
	}
	// development mode, show error detail
	if err != nil && gin.Mode() != gin.ReleaseMode {
		res.Error = fmt.Sprintf("%+v", err)
	}
	if errCode >= http.StatusInternalServerError {
		log.Error(msg, zap.Error(err))
	}
	return res
}

// DBErr
func DBErr(msg string, err error) Response {
	if msg == "" {
		msg = "database error"
	}
	return Err(http.StatusInternalServerError, msg, err)
}

// ParamErr
func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "parameter error"
	}
	return Err(http.StatusBadRequest, msg, err)
}

// AuthErr
func AuthErr(msg string) Response {
	if msg == "" {
		msg = "authentication error"
	}
	return Err(http.StatusUnauthorized, msg, nil)
}

// NotFoundErr
func NotFoundErr(msg string, err error) Response {
	if msg == "" {
		msg = "not found"
	}
	return Err(http.StatusNotFound, msg, err)
}

// DownstreamErr covers failed calls to storage, email or SMS providers.
func DownstreamErr(msg string, err error) Response {
	if msg == "" {
		msg = "downstream service error"
	}
	return Err(http.StatusInternalServerError, msg, err)
}
