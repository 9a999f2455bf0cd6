// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byceps/byceps-go/internal/model"
	"github.com/byceps/byceps-go/internal/testutil"
)

func TestSignatureRoundTrip(t *testing.T) {
	payload := []byte(`{"event":"news-item-published"}`)
	sig := GenerateSignature(payload, "secret")

	assert.True(t, VerifySignature(payload, sig, "secret"))
	assert.False(t, VerifySignature(payload, sig, "other"))
	assert.False(t, VerifySignature([]byte("tampered"), sig, "secret"))
}

func TestDispatcherDeliversSignedEvents(t *testing.T) {
	type received struct {
		event     string
		signature string
		body      []byte
	}

	var mu sync.Mutex
	var deliveries []received
	done := make(chan struct{}, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		deliveries = append(deliveries, received{
			event:     r.Header.Get(EventHeader),
			signature: r.Header.Get(SignatureHeader),
			body:      body,
		})
		mu.Unlock()
		done <- struct{}{}
	}))
	defer server.Close()

	d := NewDispatcher(Config{
		Endpoints: []Endpoint{{URL: server.URL, Secret: "secret"}},
		Workers:   1,
	}, testutil.TestLogger())
	d.Start()
	defer d.Stop()

	event := model.NewsItemPublishedEvent{
		EventBase:   model.NewEventBase(time.Now(), nil),
		ItemID:      "item-1",
		ChannelID:   "channel-1",
		PublishedAt: time.Now(),
		Title:       "Launch Party",
		ExternalURL: "https://acmecon-2026.example.net/news/launch-party",
	}
	d.Emit(context.Background(), event)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, deliveries, 1)
	got := deliveries[0]

	assert.Equal(t, "news-item-published", got.event)
	assert.True(t, VerifySignature(got.body, got.signature, "secret"))

	var envelope struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(got.body, &envelope))
	assert.Equal(t, "news-item-published", envelope.Event)
	assert.Contains(t, string(envelope.Data), "launch-party")
}

func TestDispatcherWithoutEndpointsIsANop(t *testing.T) {
	d := NewDispatcher(Config{}, testutil.TestLogger())
	// No Start; Emit must not block or panic.
	d.Emit(context.Background(), model.SnippetCreatedEvent{})
}
