package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func getCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.GetOrCreate(c.Request.Context(), sessionKey(c), nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

type addLineRequest struct {
	ProductID string  `json:"productId"`
	VariantID *string `json:"variantId"`
	Quantity  int     `json:"quantity"`
}

func addCartLineHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		view, err := svc.AddLine(c.Request.Context(), sessionKey(c), req.ProductID, req.VariantID, req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func setCartLineQuantityHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		view, err := svc.SetQuantity(c.Request.Context(), sessionKey(c), c.Param("lineId"), req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func removeCartLineHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.RemoveLine(c.Request.Context(), sessionKey(c), c.Param("lineId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func clearCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.Clear(c.Request.Context(), sessionKey(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
