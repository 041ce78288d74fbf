package api

import (
	"net/http"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listVendors(c *gin.Context) {
	var details apperr.FieldErrors
	q := service.VendorQuery{
		Page:      queryInt(c, "page", &details),
		Size:      queryInt(c, "size", &details),
		Search:    c.Query("search"),
		Latitude:  queryFloat(c, "latitude", &details),
		Longitude: queryFloat(c, "longitude", &details),
	}
	if err := details.Err(); err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.svc.Vendors.ListVendors(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getVendor(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	vendor, err := h.svc.Vendors.GetVendor(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (h *Handler) createVendor(c *gin.Context) {
	var req service.CreateVendorRequest
	if !h.bindJSON(c, &req) {
		return
	}

	vendor, err := h.svc.Vendors.CreateVendor(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

func (h *Handler) updateVendor(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req service.UpdateVendorRequest
	if !h.bindJSON(c, &req) {
		return
	}

	vendor, err := h.svc.Vendors.UpdateVendor(c.Request.Context(), claimsFrom(c), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (h *Handler) deleteVendor(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Vendors.DeleteVendor(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vendor deleted successfully"})
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.svc.Products.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Products.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) dashboardStats(c *gin.Context) {
	stats, err := h.svc.Dashboard.GetStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
