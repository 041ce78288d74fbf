package api

import (
	"net/http"

	"marketplace-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.svc.Carts.GetCart(c.Request.Context(), claimsFrom(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handler) addToCart(c *gin.Context) {
	var req service.AddToCartRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.svc.Carts.AddToCart(c.Request.Context(), claimsFrom(c).UserID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) updateCartItem(c *gin.Context) {
	cartID, ok := h.pathID(c)
	if !ok {
		return
	}
	var req service.UpdateCartItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.svc.Carts.UpdateCartItem(c.Request.Context(), claimsFrom(c).UserID, cartID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) removeFromCart(c *gin.Context) {
	cartID, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Carts.RemoveFromCart(c.Request.Context(), claimsFrom(c).UserID, cartID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

func (h *Handler) clearCart(c *gin.Context) {
	if err := h.svc.Carts.ClearCart(c.Request.Context(), claimsFrom(c).UserID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared successfully"})
}

func (h *Handler) getWishlist(c *gin.Context) {
	entries, err := h.svc.Carts.GetWishlist(c.Request.Context(), claimsFrom(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) addToWishlist(c *gin.Context) {
	var req service.AddToWishlistRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.svc.Carts.AddToWishlist(c.Request.Context(), claimsFrom(c).UserID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) removeFromWishlist(c *gin.Context) {
	wishlistID, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Carts.RemoveFromWishlist(c.Request.Context(), claimsFrom(c).UserID, wishlistID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from wishlist"})
}
