package notify

import (
	"context"
	"fmt"
	"time"

	appLog "fightcal/internal/log"
	"fightcal/internal/model"
)

// Notifier routes messages to destinations by kind and fans a message out
// across a destination set.
type Notifier struct {
	senders map[model.DestinationKind]Sender
}

// NewNotifier creates a Notifier over the given senders.
func NewNotifier(senders ...Sender) *Notifier {
	byKind := make(map[model.DestinationKind]Sender, len(senders))
	for _, s := range senders {
		byKind[s.Kind()] = s
	}
	return &Notifier{senders: byKind}
}

// Deliver sends one message to one destination.
func (n *Notifier) Deliver(ctx context.Context, msg Message, dest model.Destination) error {
	sender, ok := n.senders[dest.Kind]
	if !ok {
		return &DeliveryError{Destination: dest, Err: fmt.Errorf("no sender for kind %q", dest.Kind)}
	}
	return sender.Send(ctx, msg, dest.Target)
}

// Fanout delivers msg to every destination, isolating failures per
// destination. It returns one result per destination; order across
// destinations is unspecified.
func (n *Notifier) Fanout(ctx context.Context, msg Message, destinations []model.Destination) []model.DeliveryResult {
	results := make([]model.DeliveryResult, 0, len(destinations))

	for _, dest := range destinations {
		started := time.Now()
		err := n.Deliver(ctx, msg, dest)
		results = append(results, model.DeliveryResult{
			Destination: dest,
			Err:         err,
			Elapsed:     time.Since(started),
		})
		if err != nil {
			appLog.Error("delivery failed", err, "kind", dest.Kind, "target", dest.Target)
		}
	}

	return results
}
