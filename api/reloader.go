/*
reloader.go - Tariff directory reloader

PURPOSE:
  Keeps the tariff store in step with the tariff directory. Ports publish
  revised tariffs; an operator drops the new document into the directory
  and the next reload saves it and drops the cached calculator, with no
  restart.

DESIGN:
  - Reload parses every document in the directory (factory.LoadDir)
  - A profile is saved only when its document differs from the stored
    one, so an unchanged directory never bumps a version
  - A directory that fails to parse is logged and skipped as a whole;
    the previous tables stay in force
  - Start runs Reload on a ticker in a background goroutine

CONFIGURATION:
  - Interval: How often to reload (0 disables the background loop)

USAGE:
  reloader := NewTariffReloader(handler, "./tariffs", time.Minute)
  reloader.Start()
  // ... later
  reloader.Stop()

SEE ALSO:
  - handlers.go: Calculator cache invalidated on change
  - factory/tariff.go: Document loading
*/
package api

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/warp/pda-engine/disbursement"
)

// TariffReloader saves changed tariff documents from a directory.
type TariffReloader struct {
	Handler  *Handler
	Dir      string
	Interval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewTariffReloader creates a reloader for dir.
func NewTariffReloader(handler *Handler, dir string, interval time.Duration) *TariffReloader {
	return &TariffReloader{
		Handler:  handler,
		Dir:      dir,
		Interval: interval,
	}
}

// Reload loads the directory once and returns the IDs of saved profiles.
func (tr *TariffReloader) Reload(ctx context.Context) ([]string, error) {
	h := tr.Handler
	profiles, err := h.TariffFactory.LoadDir(tr.Dir)
	if err != nil {
		return nil, err
	}

	var saved []string
	for _, p := range profiles {
		changed, err := tr.changed(ctx, p)
		if err != nil {
			return saved, err
		}
		if !changed {
			continue
		}
		if err := h.Store.Save(ctx, p); err != nil {
			return saved, err
		}
		h.invalidate(p.ID)
		saved = append(saved, p.ID)
		h.Logger.InfoContext(ctx, "tariff reloaded", "tariff_id", p.ID, "dir", tr.Dir)
	}
	return saved, nil
}

func (tr *TariffReloader) changed(ctx context.Context, p disbursement.TariffProfile) (bool, error) {
	f := tr.Handler.TariffFactory
	stored, err := tr.Handler.Store.Get(ctx, p.ID)
	if disbursement.IsNotFound(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	a, err := f.MarshalJSON(*stored)
	if err != nil {
		return false, err
	}
	b, err := f.MarshalJSON(p)
	if err != nil {
		return false, err
	}
	return !bytes.Equal(a, b), nil
}

// Start begins reloading in the background. A zero Interval does nothing.
func (tr *TariffReloader) Start() {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.Interval <= 0 || tr.ticker != nil {
		return
	}

	tr.ticker = time.NewTicker(tr.Interval)
	tr.stop = make(chan struct{})
	tr.wg.Add(1)
	go tr.run(tr.ticker, tr.stop)

	tr.Handler.Logger.Info("tariff reloader started", "dir", tr.Dir, "interval", tr.Interval)
}

// Stop stops the background loop and waits for a running reload.
func (tr *TariffReloader) Stop() {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.ticker == nil {
		return
	}
	tr.ticker.Stop()
	close(tr.stop)
	tr.wg.Wait()
	tr.ticker = nil
}

func (tr *TariffReloader) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer tr.wg.Done()

	for {
		select {
		case <-ticker.C:
			if _, err := tr.Reload(context.Background()); err != nil {
				tr.Handler.Logger.Warn("tariff reload failed", "dir", tr.Dir, "error", err)
			}
		case <-stop:
			return
		}
	}
}
