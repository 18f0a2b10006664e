package httpx

import (
	"errors"
	"net/http"

	"github.com/Hycient195/academia-pro-cache/errcode"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrBadRequest request could not be bound
var ErrBadRequest = errcode.Register(errcode.New(1, 1000, "common", "error.common.bad_request", "bad request", http.StatusBadRequest))

// Response JSON envelope
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// OkJson 200 with code 0
func OkJson(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: 0,
		Msg:  "success",
		Data: data,
	})
}

// NoRouteHandler JSON 404 for engine.NoRoute
func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Response{
			Code: http.StatusNotFound,
			Msg:  "route not found: " + c.Request.Method + " " + c.Request.URL.Path,
		})
	}
}

// NoMethodHandler JSON 405 for engine.NoMethod
func NoMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, Response{
			Code: http.StatusMethodNotAllowed,
			Msg:  "method not allowed: " + c.Request.Method + " " + c.Request.URL.Path,
		})
	}
}

// HandleError writes a LayeredError with its own status, code and data
// Anything else becomes a 500 without the internal message
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	ctx := c.Request.Context()
	el := errorLoggingFrom(c)

	var layered *errcode.LayeredError
	if errors.As(err, &layered) {
		if el.enable && !el.ignoreStatusMap[layered.HTTPStatus()] {
			fields := []zap.Field{
				zap.Int("error_code", layered.Code()),
				zap.String("error_msg", layered.Message()),
			}
			if el.fullErrorChain {
				fields = append(fields, zap.String("error_chain", layered.String()), zap.Error(err))
			}
			switch el.logLevel {
			case "warn":
				el.log.WarnCtx(ctx, "request failed", fields...)
			case "info":
				el.log.InfoCtx(ctx, "request failed", fields...)
			default:
				el.log.ErrorCtx(ctx, "request failed", fields...)
			}
		}

		resp := Response{Code: layered.Code(), Msg: layered.Message()}
		if data := layered.Data(); len(data) > 0 {
			resp.Data = data
		}
		c.JSON(layered.HTTPStatus(), resp)
		return
	}

	if el.enable {
		el.log.ErrorCtx(ctx, "unexpected error", zap.Error(err))
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code: http.StatusInternalServerError,
		Msg:  "internal error",
	})
}
