package notify

import (
	"log/slog"
	"sync"
)

// Dispatcher decouples request handling from mail I/O. Callers enqueue a
// message after their transaction commits and move on; a single worker
// goroutine performs delivery. Delivery failures are logged and never
// surfaced to the caller.
type Dispatcher struct {
	mailer Mailer
	logger *slog.Logger

	queue chan Message
	wg    sync.WaitGroup
	once  sync.Once
}

func NewDispatcher(mailer Mailer, logger *slog.Logger, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{
		mailer: mailer,
		logger: logger,
		queue:  make(chan Message, buffer),
	}
}

// Start launches the delivery worker.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for msg := range d.queue {
			if err := d.mailer.Send(msg); err != nil {
				d.logger.Error("notification delivery failed",
					"to", msg.To,
					"subject", msg.Subject,
					"error", err,
				)
				continue
			}
			d.logger.Debug("notification delivered", "to", msg.To, "subject", msg.Subject)
		}
	}()
}

// Stop closes the queue and waits for in-flight deliveries to finish.
func (d *Dispatcher) Stop() {
	d.once.Do(func() { close(d.queue) })
	d.wg.Wait()
}

// Enqueue hands a message to the worker without blocking the request path.
// When the queue is full the message is dropped with a warning; losing a
// notice must never fail the booking that triggered it.
func (d *Dispatcher) Enqueue(msg Message) {
	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("notification queue full, dropping message",
			"to", msg.To,
			"subject", msg.Subject,
		)
	}
}
