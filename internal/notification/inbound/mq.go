package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/coursebite/internal/pkg/config"
	"github.com/shandysiswandi/coursebite/internal/pkg/goroutine"
	"github.com/shandysiswandi/coursebite/internal/pkg/instrument"
	"github.com/shandysiswandi/coursebite/internal/pkg/messaging"
	"github.com/shandysiswandi/coursebite/internal/pkg/uid"
	"github.com/shandysiswandi/coursebite/internal/shared/event"
)

const defaultConsumerConcurrency = 10

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc ucConsumer,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")
	concurrency := cfg.GetInt("modules.notification.consumer_concurrency")
	if concurrency <= 0 {
		concurrency = defaultConsumerConcurrency
	}

	var consumers = []struct {
		name    string
		topic   string // destination where publisher sent message
		group   string // nats queue group and kafka consumer group
		handler messaging.Handler
	}{
		{
			name:    event.UserSignedUpConsumerNotification,
			topic:   event.UserSignedUpDestination,
			group:   event.UserSignedUpConsumerNotification,
			handler: mqHandler.UserSignedUpNotification,
		},
		{
			name:    event.EnrollmentCreatedConsumerNotification,
			topic:   event.EnrollmentCreatedDestination,
			group:   event.EnrollmentCreatedConsumerNotification,
			handler: mqHandler.EnrollmentCreatedNotification,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithQueueGroup(consumer.group),
					messaging.WithGroup(consumer.group),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(concurrency),
				)
			})
		}
	}
}
