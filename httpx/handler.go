package httpx

import (
	"github.com/Hycient195/academia-pro-cache/validator"
	"github.com/gin-gonic/gin"
)

// HandlerFunc typed handler: bound request in, response or error out
type HandlerFunc[Req any, Resp any] func(c *gin.Context, req *Req) (*Resp, error)

// Wrap binds and validates Req, calls handler and writes the envelope
//
//	r.GET("/admin/cache/stats", httpx.Wrap(h.stats))
func Wrap[Req any, Resp any](handler HandlerFunc[Req, Resp]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Req
		if err := Parse(c, &req); err != nil {
			HandleError(c, ErrBadRequest.Wrap(err))
			return
		}

		if v, ok := any(&req).(validator.Validatable); ok {
			if err := validator.ValidateRequest(v); err != nil {
				HandleError(c, err)
				return
			}
		}

		resp, err := handler(c, &req)
		if err != nil {
			HandleError(c, err)
			return
		}
		OkJson(c, resp)
	}
}
