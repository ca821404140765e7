package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	checkoutsvc "storefront/internal/service/checkout"
)

func checkoutHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkoutsvc.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		// There is no login flow yet, so in.CustomerID stays nil here and
		// the ownership check in checkout only passes guest or unowned
		// stored addresses.
		// TODO: fill in.CustomerID from the authenticated session once
		// accounts exist.
		result, err := svc.Start(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}
