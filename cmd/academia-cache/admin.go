package main

import (
	"github.com/Hycient195/academia-pro-cache/cache"
	"github.com/Hycient195/academia-pro-cache/httpx"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
)

type adminHandler struct {
	svc *cache.Service
}

type emptyRequest struct{}

type invalidateRequest struct {
	Pattern string `form:"pattern" json:"pattern"`
	All     bool   `form:"all" json:"all"`
}

func (r *invalidateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Pattern, validation.When(!r.All, validation.Required)),
	)
}

type scopeRequest struct {
	ID string `uri:"id" json:"id"`
}

func (r *scopeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ID, validation.Required),
	)
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

type invalidateResponse struct {
	Deleted int64 `json:"deleted"`
	Cleared bool  `json:"cleared,omitempty"`
}

func registerAdminRoutes(r gin.IRouter, svc *cache.Service) {
	h := &adminHandler{svc: svc}

	g := r.Group("/admin/cache")
	g.GET("/stats", httpx.Wrap(h.stats))
	g.DELETE("", httpx.Wrap(h.invalidate))
	g.DELETE("/users/:id", httpx.Wrap(h.clearUser))
	g.DELETE("/schools/:id", httpx.Wrap(h.clearSchool))
}

func (h *adminHandler) stats(c *gin.Context, _ *emptyRequest) (*cache.Stats, error) {
	stats := h.svc.Stats(c.Request.Context())
	return &stats, nil
}

// invalidate deletes by pattern, or flushes everything with ?all=true
func (h *adminHandler) invalidate(c *gin.Context, req *invalidateRequest) (*invalidateResponse, error) {
	ctx := c.Request.Context()
	if req.All && req.Pattern == "" {
		h.svc.ClearAll(ctx)
		return &invalidateResponse{Cleared: true}, nil
	}
	return &invalidateResponse{Deleted: h.svc.InvalidatePattern(ctx, req.Pattern)}, nil
}

func (h *adminHandler) clearUser(c *gin.Context, req *scopeRequest) (*deletedResponse, error) {
	return &deletedResponse{Deleted: h.svc.ClearUserCache(c.Request.Context(), req.ID)}, nil
}

func (h *adminHandler) clearSchool(c *gin.Context, req *scopeRequest) (*deletedResponse, error) {
	return &deletedResponse{Deleted: h.svc.ClearSchoolCache(c.Request.Context(), req.ID)}, nil
}
