package dispatch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Transport delivers one message body to one destination and reports the
// transport status code plus raw response payload.
type Transport interface {
	Send(ctx context.Context, destination, text string) (status int, body string, err error)
}

// Delivery pairs a destination identity with a message body.
type Delivery struct {
	Destination string
	Text        string
}

// Outcome records the result of one delivery attempt.
type Outcome struct {
	Destination string
	OK          bool
	Status      int
	Body        string
	Err         error
}

// Dispatcher fans submissions out to their destinations. Deliveries run
// concurrently with independent timeouts and local error capture, so a slow
// or failing destination never blocks the others.
type Dispatcher struct {
	transport Transport
	timeout   time.Duration
	logger    *zap.Logger
}

func NewDispatcher(transport Transport, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		transport: transport,
		timeout:   timeout,
		logger:    logger,
	}
}

// Dispatch delivers every entry and returns one Outcome per delivery, in
// input order. No retries: a failed delivery surfaces in its Outcome and the
// caller decides what that means for the request.
func (d *Dispatcher) Dispatch(ctx context.Context, deliveries []Delivery) []Outcome {
	outcomes := make([]Outcome, len(deliveries))

	var wg sync.WaitGroup
	for i, del := range deliveries {
		wg.Add(1)
		go func(i int, del Delivery) {
			defer wg.Done()
			outcomes[i] = d.deliver(ctx, del)
		}(i, del)
	}
	wg.Wait()

	return outcomes
}

func (d *Dispatcher) deliver(ctx context.Context, del Delivery) Outcome {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	status, body, err := d.transport.Send(ctx, del.Destination, del.Text)

	out := Outcome{
		Destination: del.Destination,
		Status:      status,
		Body:        body,
		Err:         err,
		OK:          err == nil && status >= 200 && status < 300,
	}

	if !out.OK {
		d.logger.Warn("delivery failed",
			zap.String("destination", del.Destination),
			zap.Int("status", status),
			zap.Error(err))
	}

	return out
}
