package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/shifts-logger/internal/core/events"
	"github.com/frahmantamala/shifts-logger/internal/metrics"
	"github.com/frahmantamala/shifts-logger/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect the domain event bus: publish sample events and see who handles them`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample domain event",
	Long:  `Publish a sample event of the given type on an in-process bus wired like the server's`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), args[0])
	},
}

var (
	eventUserID  string
	eventShiftID int64
)

// sampleEvent builds an event of eventType with placeholder ids.
func sampleEvent(eventType string) (events.Event, error) {
	switch eventType {
	case events.EventTypeUserRegistered:
		return events.NewUserRegisteredEvent(eventUserID, "cli@example.com", "Development"), nil
	case events.EventTypeUserLoggedIn:
		return events.NewUserLoggedInEvent(eventUserID, "employee", uuid.NewString(), uuid.NewString()), nil
	case events.EventTypeUserLoggedOut:
		return events.NewUserLoggedOutEvent(eventUserID, uuid.NewString()), nil
	case events.EventTypeShiftCreated, events.EventTypeShiftUpdated, events.EventTypeShiftDeleted:
		return events.NewShiftChangedEvent(eventType, eventShiftID, eventUserID, eventUserID), nil
	}
	return nil, fmt.Errorf("unknown event type %q", eventType)
}

func publishTestEvent(ctx context.Context, eventType string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lg := logger.LoggerWrapper()

	event, err := sampleEvent(eventType)
	if err != nil {
		return err
	}

	bus := events.NewEventBus(lg)
	m := metrics.New()
	m.Subscribe(bus)
	bus.Subscribe(eventType, func(ctx context.Context, e events.Event) error {
		lg.Info("test handler received event",
			"event_id", e.EventID(),
			"event_type", e.EventType(),
			"payload", e.Payload())
		return nil
	})

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID(), "handlers", bus.HandlerCount(eventType))
	if err := bus.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := bus.Wait(waitCtx); err != nil {
		return fmt.Errorf("handlers did not finish: %w", err)
	}

	families, err := m.Registry().Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	counted := 0
	for _, mf := range families {
		switch mf.GetName() {
		case "shiftslogger_auth_events_total", "shiftslogger_shift_events_total":
			counted += len(mf.GetMetric())
		}
	}
	lg.Info("test event published successfully", "metric_series", counted)
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventUserID, "user", "cli-user", "user id carried by the event")
	publishEventCmd.Flags().Int64Var(&eventShiftID, "shift", 1, "shift id carried by shift events")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
