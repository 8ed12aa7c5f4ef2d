package consumer

// Package consumer reads domain events from Azure Event Hub and feeds them
// into the same dispatch pipeline the websocket channel uses. Used in
// server-colocated deployments where the notification pipeline runs next to
// the event producer instead of behind a socket.

import (
	"context"
	"encoding/json"
	"fmt"

	"eon-notify/config"
	"eon-notify/data"
	"eon-notify/logger"
	"eon-notify/utils"

	eventhub "github.com/Azure/azure-event-hubs-go/v3"
	"github.com/go-playground/validator/v10"
)

// Injector is the dispatch entry point, satisfied by the connection
// manager's Inject method.
type Injector interface {
	Inject(evt data.DomainEvent)
}

// StartEventHubConsumer starts one receiver per partition and injects every
// decoded event envelope. Malformed messages are logged and skipped, never
// fatal. Blocks until ctx is cancelled.
func StartEventHubConsumer(ctx context.Context, injector Injector, validate *validator.Validate) error {
	cfg := config.LoadConfig()
	connectionString := fmt.Sprintf("%s;EntityPath=%s", cfg.EventHubNameSpaceConString, cfg.EventHubNotificationEventName)

	hub, err := eventhub.NewHubFromConnectionString(connectionString)
	if err != nil {
		return fmt.Errorf("failed to connect to Event Hub: %w", err)
	}
	logger.Log.Debug(logger.LogPayload{
		Message:   "Connected to Event Hub",
		Component: "EventHub Consumer",
		Operation: "StartEventHubConsumer",
	})

	runtimeInfo, err := hub.GetRuntimeInformation(ctx)
	if err != nil {
		return err
	}

	for _, partitionID := range runtimeInfo.PartitionIDs {
		go func(pid string) {
			hub.Receive(ctx, pid, func(ctx context.Context, event *eventhub.Event) error {
				correlationId := utils.GenerateUUID()

				var envelope data.EventHubNotificationEnvelope
				if err := json.Unmarshal(event.Data, &envelope); err != nil {
					logger.Log.Error(logger.LogPayload{
						Message:       "Invalid message format",
						Component:     "EventHub Consumer",
						Operation:     "OnEventReceived",
						Error:         err,
						CorrelationId: correlationId,
					})
					return nil
				}
				if err := validate.Struct(envelope); err != nil {
					logger.Log.Error(logger.LogPayload{
						Message:       "Event envelope failed validation",
						Component:     "EventHub Consumer",
						Operation:     "OnEventReceived",
						Error:         err,
						EventType:     envelope.EventType,
						CorrelationId: correlationId,
					})
					return nil
				}

				logger.Log.Debug(logger.LogPayload{
					Message:       "Injecting event from Event Hub",
					Component:     "EventHub Consumer",
					Operation:     "OnEventReceived",
					EventType:     envelope.EventType,
					CorrelationId: correlationId,
				})
				injector.Inject(data.DomainEvent{
					EventType: envelope.EventType,
					Payload:   envelope.Payload,
					Timestamp: envelope.Timestamp,
				})
				return nil
			}, eventhub.ReceiveWithLatestOffset())
		}(partitionID)
	}

	<-ctx.Done()
	logger.Log.Info(logger.LogPayload{
		Message:   "Shutting down Event Hub consumer",
		Component: "EventHub Consumer",
		Operation: "Shutdown",
	})
	hub.Close(context.Background())

	return nil
}
