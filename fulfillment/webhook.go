package fulfillment

import (
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/dialogflow/apiv2/dialogflowpb"
	"github.com/gofiber/fiber/v2"
	"google.golang.org/protobuf/encoding/protojson"
)

var (
	unmarshalOptions = protojson.UnmarshalOptions{DiscardUnknown: true}
	marshalOptions   = protojson.MarshalOptions{}
)

// Webhook returns a fiber handler answering Dialogflow fulfillment calls
// with the handlers in intents.
func Webhook(intents IntentMap) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := &dialogflowpb.WebhookRequest{}
		if err := unmarshalOptions.Unmarshal(c.Body(), req); err != nil {
			log.Println("Failed to decode webhook request:", err)
			return fiber.NewError(fiber.StatusBadRequest, "malformed webhook request")
		}

		log.Println("Intent detected:", req.GetQueryResult().GetIntent().GetDisplayName())

		agent := NewAgent(req, func(resp *dialogflowpb.WebhookResponse) error {
			return sendResponse(c, resp)
		})

		if err := agent.HandleRequest(c.UserContext(), intents); err != nil {
			log.Println("Failed to fulfill webhook request:", err)

			if errors.Is(err, ErrUnknownIntent) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return err
		}

		return nil
	}
}

func sendResponse(c *fiber.Ctx, resp *dialogflowpb.WebhookResponse) error {
	body, err := marshalOptions.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode webhook response: %w", err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)

	return c.Send(body)
}
