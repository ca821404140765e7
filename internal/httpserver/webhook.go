package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/gateway"
)

// webhookHandler acknowledges anything that must not be redelivered with a
// 200 and reserves 5xx for failures where redelivery can still succeed.
func webhookHandler(svc WebhookService) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}

		paymentID := c.Query("data.id")
		if paymentID == "" {
			paymentID = c.Query("id")
		}
		n := gateway.Notification{
			Body:      body,
			Signature: c.GetHeader("X-Signature"),
			PaymentID: paymentID,
		}

		out, err := svc.Process(c.Request.Context(), c.Param("gateway"), n)
		if err != nil {
			webhookError(c, err)
			return
		}

		switch {
		case out.Dropped:
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		case out.Created:
			c.JSON(http.StatusOK, gin.H{"status": "created", "orderId": out.Order.ID})
		default:
			c.JSON(http.StatusOK, gin.H{"status": "duplicate", "orderId": out.Order.ID})
		}
	}
}

// webhookError keeps 4xx for deliveries that can never succeed, a failed
// signature or a payload the adapter cannot use. Everything past
// verification failed while recording the order, and a 5xx makes the
// gateway redeliver.
func webhookError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrGatewayVerification),
		errors.Is(err, domain.ErrInvalidLine):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
