package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/safetrail/engine/internal/alert"
	"github.com/safetrail/engine/internal/storage"
)

// Dispatcher is the single choke point every alert flows through.
// It appends to the local history synchronously, then makes exactly one
// best-effort delivery attempt to the ingestion endpoint.
type Dispatcher struct {
	deliverer Deliverer
	history   storage.AlertHistory
	logger    *slog.Logger

	// inflight tracks fire-and-forget deliveries so tests and shutdown
	// can wait for them; deliveries are never cancelled.
	inflight sync.WaitGroup
}

// NewDispatcher creates a dispatcher writing to history and delivering
// through deliverer.
func NewDispatcher(deliverer Deliverer, history storage.AlertHistory, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		deliverer: deliverer,
		history:   history,
		logger:    logger,
	}
}

// Dispatch records a locally and fires one asynchronous delivery attempt.
// Delivery failures are logged and swallowed; the caller never blocks on
// the network and never sees a delivery error. The alert is snapshotted
// before the goroutine starts so later caller mutations cannot race it.
func (d *Dispatcher) Dispatch(a alert.Alert) {
	snapshot := a.Clone()

	if err := d.history.Append(snapshot); err != nil {
		d.logger.Error("failed to record alert in local history",
			"alertId", a.ID, "category", a.Category, "error", err)
	}

	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), DeliveryTimeout)
		defer cancel()

		if err := d.deliverer.Deliver(ctx, snapshot); err != nil {
			d.logger.Warn("alert delivery failed",
				"alertId", snapshot.ID, "category", snapshot.Category, "error", err)
		}
	}()
}

// DispatchAndWait records a locally, then delivers synchronously and
// returns the delivery outcome. This is the panic-button path: the caller
// must be able to tell the user whether the alert went out.
func (d *Dispatcher) DispatchAndWait(ctx context.Context, a alert.Alert) error {
	snapshot := a.Clone()

	if err := d.history.Append(snapshot); err != nil {
		d.logger.Error("failed to record alert in local history",
			"alertId", a.ID, "category", a.Category, "error", err)
	}

	if err := d.deliverer.Deliver(ctx, snapshot); err != nil {
		d.logger.Warn("alert delivery failed",
			"alertId", a.ID, "category", a.Category, "error", err)
		return err
	}
	return nil
}

// Wait blocks until all fire-and-forget deliveries started so far have
// completed or failed.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}
