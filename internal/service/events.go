package service

import (
	"context"

	"ai-llm-demos-be/internal/pkg/logger"
	"ai-llm-demos-be/pkg/events"
)

func publishEvent(ctx context.Context, pub events.IPublisher, log logger.ILogger, event events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
