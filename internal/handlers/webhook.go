package handlers

import (
	"log"

	"veripay/internal/services/webhook"
	"veripay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	ingestor *webhook.Ingestor
}

func NewWebhookHandler(ingestor *webhook.Ingestor) *WebhookHandler {
	return &WebhookHandler{ingestor: ingestor}
}

// HandleMonnify receives processor notifications. The signature covers
// the exact raw body, so the payload is handed over before any parsing.
// Every classified outcome is acknowledged with 200; only a storage
// fault returns 500 so the processor redelivers.
func (h *WebhookHandler) HandleMonnify(c *fiber.Ctx) error {
	rawBody := c.Body()
	signature := c.Get("monnify-signature")

	result, err := h.ingestor.Ingest(c.Context(), rawBody, signature)
	if err != nil {
		log.Printf("webhook ingestion failed: %v", err)
		return utils.InternalError(c, "Failed to process event")
	}

	return utils.Success(c, fiber.Map{
		"message":   "Webhook received",
		"outcome":   result.Outcome,
		"reference": result.Reference,
	})
}
