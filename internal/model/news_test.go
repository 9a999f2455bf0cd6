package model

import (
	"database/sql"
	"testing"
	"time"
)

func TestNewsItemPublicationState(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		publishedAt sql.NullTime
		want        PublicationState
	}{
		{
			name: "no publication timestamp is draft",
			want: PublicationStateDraft,
		},
		{
			name:        "future timestamp is scheduled",
			publishedAt: sql.NullTime{Time: now.Add(time.Second), Valid: true},
			want:        PublicationStateScheduled,
		},
		{
			name:        "timestamp equal to now is published",
			publishedAt: sql.NullTime{Time: now, Valid: true},
			want:        PublicationStatePublished,
		},
		{
			name:        "past timestamp is published",
			publishedAt: sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
			want:        PublicationStatePublished,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := NewsItem{PublishedAt: tt.publishedAt}
			if got := item.PublicationState(now); got != tt.want {
				t.Errorf("PublicationState() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderResultOK(t *testing.T) {
	ok := RenderResult{HTML: "<p>hi</p>"}
	if !ok.OK() {
		t.Error("expected result without error to be OK")
	}

	failed := RenderResult{Err: "boom"}
	if failed.OK() {
		t.Error("expected result with error not to be OK")
	}
}
