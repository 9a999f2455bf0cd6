// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

// Package webhook posts domain events to configured HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/byceps/byceps-go/internal/model"
)

// Delivery constants.
const (
	RequestTimeout  = 30 * time.Second
	SignatureHeader = "X-Byceps-Signature"
	EventHeader     = "X-Byceps-Event"
	userAgent       = "BYCEPS/1.0"
)

// Endpoint is one webhook receiver.
type Endpoint struct {
	URL    string
	Secret string
}

// Config holds dispatcher configuration.
type Config struct {
	Endpoints []Endpoint
	Workers   int
	QueueSize int
}

// Dispatcher delivers domain events to all configured endpoints from
// a bounded worker pool. Emit never blocks the emitting operation.
type Dispatcher struct {
	endpoints []Endpoint
	log       *slog.Logger
	client    *http.Client
	queue     chan queuedDelivery
	workers   int
	wg        sync.WaitGroup
	done      chan struct{}

	mu      sync.Mutex
	running bool
}

type queuedDelivery struct {
	eventName string
	payload   []byte
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg Config, log *slog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	return &Dispatcher{
		endpoints: cfg.Endpoints,
		log:       log,
		client:    &http.Client{Timeout: RequestTimeout},
		queue:     make(chan queuedDelivery, cfg.QueueSize),
		workers:   cfg.Workers,
		done:      make(chan struct{}),
	}
}

// Start launches the delivery workers.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true

	d.log.Info("starting webhook dispatcher",
		"workers", d.workers, "endpoints", len(d.endpoints))
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Stop drains no further work and waits for in-flight deliveries.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	close(d.done)
	d.wg.Wait()
	d.log.Info("webhook dispatcher stopped")
}

// Emit implements the content services' event sink. The event is
// serialized once and queued; a full queue drops the delivery with a
// warning rather than stalling the emitting operation.
func (d *Dispatcher) Emit(_ context.Context, event model.DomainEvent) {
	if len(d.endpoints) == 0 {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"event": event.Name(),
		"data":  event,
	})
	if err != nil {
		d.log.Error("failed to marshal webhook payload",
			"event", event.Name(), "error", err)
		return
	}

	select {
	case d.queue <- queuedDelivery{eventName: event.Name(), payload: payload}:
	default:
		d.log.Warn("webhook queue full, dropping event", "event", event.Name())
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case delivery := <-d.queue:
			for _, endpoint := range d.endpoints {
				d.deliver(endpoint, delivery)
			}
		}
	}
}

func (d *Dispatcher) deliver(endpoint Endpoint, delivery queuedDelivery) {
	ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL,
		bytes.NewReader(delivery.payload))
	if err != nil {
		d.log.Error("failed to build webhook request",
			"url", endpoint.URL, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(EventHeader, delivery.eventName)
	if endpoint.Secret != "" {
		req.Header.Set(SignatureHeader, GenerateSignature(delivery.payload, endpoint.Secret))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Warn("webhook delivery failed",
			"url", endpoint.URL, "event", delivery.eventName, "error", err)
		return
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		d.log.Warn("webhook endpoint rejected delivery",
			"url", endpoint.URL, "event", delivery.eventName, "status", resp.StatusCode)
		return
	}
	d.log.Debug("webhook delivered",
		"url", endpoint.URL, "event", delivery.eventName, "status", resp.StatusCode)
}

// GenerateSignature computes the hex HMAC-SHA256 signature of the
// payload.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a hex HMAC-SHA256 signature in constant time.
func VerifySignature(payload []byte, signature, secret string) bool {
	expected := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}
