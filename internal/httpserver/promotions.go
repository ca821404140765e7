package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	promosvc "storefront/internal/service/promotion"
)

func listPromotionsHandler(svc PromotionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		promos, err := svc.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"promotions": promos, "count": len(promos)})
	}
}

func getPromotionHandler(svc PromotionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		promo, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, promo)
	}
}

func createPromotionHandler(svc PromotionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in promosvc.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		promo, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, promo)
	}
}

func deletePromotionHandler(svc PromotionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func sweepPromotionsHandler(svc PromotionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		swept, err := svc.SweepExpired(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"swept": swept})
	}
}

func promotionStatsHandler(svc PromotionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.Stats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
