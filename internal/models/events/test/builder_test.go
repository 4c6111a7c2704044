package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-review/internal/models/events"
	"github.com/bionicotaku/lingo-services-review/internal/models/po"

	"github.com/google/uuid"
)

func TestNewVideoReadyEvent(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	video := &po.Video{
		VideoID:      uuid.New(),
		ProjectID:    uuid.New(),
		UploaderID:   uuid.New(),
		ProviderGUID: "guid-1",
		Title:        "final cut",
		Status:       po.VideoStatusReady,
	}
	media := po.ReadyMedia{
		DurationSeconds: 90,
		Width:           1920,
		Height:          1080,
		FrameRate:       25,
		ThumbnailURL:    "https://cdn.test/guid-1/thumbnail.jpg",
		PlaybackURL:     "https://cdn.test/guid-1/playlist.m3u8",
	}
	evtID := uuid.New()

	evt, err := events.NewVideoReadyEvent(video, media, evtID, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evt.Kind != events.KindVideoReady {
		t.Fatalf("unexpected kind: %v", evt.Kind)
	}
	if evt.AggregateID != video.VideoID || evt.AggregateType != events.AggregateTypeVideo {
		t.Fatal("aggregate mismatch")
	}
	if !evt.OccurredAt.Equal(now) {
		t.Fatalf("occurred_at mismatch: got %s want %s", evt.OccurredAt, now)
	}
	if evt.Version != now.UnixMicro() {
		t.Fatalf("expected version from occurred_at, got %d", evt.Version)
	}
	payload, ok := evt.Payload.(*events.VideoReady)
	if !ok {
		t.Fatalf("payload type mismatch: %T", evt.Payload)
	}
	if payload.DurationSeconds != 90 || payload.PlaybackURL != media.PlaybackURL {
		t.Fatalf("payload mismatch: %+v", payload)
	}
}

func TestNewVideoReadyEventNilVideo(t *testing.T) {
	_, err := events.NewVideoReadyEvent(nil, po.ReadyMedia{}, uuid.New(), time.Now())
	if !errors.Is(err, events.ErrNilVideo) {
		t.Fatalf("expected ErrNilVideo, got %v", err)
	}
}

func TestNewVideoDeletedEventCarriesReason(t *testing.T) {
	reason := "replaced by v2"
	video := &po.Video{VideoID: uuid.New(), ProjectID: uuid.New()}

	evt, err := events.NewVideoDeletedEvent(video, uuid.New(), time.Now(), &reason)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload := evt.Payload.(*events.VideoDeleted)
	if payload.Reason == nil || *payload.Reason != reason {
		t.Fatalf("expected reason to be carried, got %v", payload.Reason)
	}
}

func TestNewCommentMentionedEventRequiresTarget(t *testing.T) {
	comment := &po.Comment{CommentID: uuid.New(), VideoID: uuid.New(), ProjectID: uuid.New(), AuthorID: uuid.New()}

	if _, err := events.NewCommentMentionedEvent(comment, uuid.Nil, uuid.New(), time.Now()); err == nil {
		t.Fatal("expected error for nil mention target")
	}

	target := uuid.New()
	evt, err := events.NewCommentMentionedEvent(comment, target, uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload := evt.Payload.(*events.CommentMentioned)
	if payload.MentionedID != target {
		t.Fatalf("expected mentioned id %s, got %s", target, payload.MentionedID)
	}
}

func TestBuildAttributes(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	video := &po.Video{VideoID: uuid.New(), ProjectID: uuid.New()}
	evt, err := events.NewVideoFailedEvent(video, "video processing failed", uuid.New(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	attrs := events.BuildAttributes(evt, "", events.TraceIDFromContext(context.Background()))
	if attrs["event_type"] != "video.failed" {
		t.Fatalf("unexpected event_type: %s", attrs["event_type"])
	}
	if attrs["schema_version"] != events.SchemaVersionV1 {
		t.Fatalf("expected schema version fallback, got %s", attrs["schema_version"])
	}
	if attrs["aggregate_type"] != events.AggregateTypeVideo {
		t.Fatalf("unexpected aggregate_type: %s", attrs["aggregate_type"])
	}
	if _, ok := attrs["trace_id"]; ok {
		t.Fatal("expected no trace_id without an active span")
	}

	headers, err := events.MarshalAttributes(attrs)
	if err != nil {
		t.Fatalf("marshal attributes: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(headers, &decoded); err != nil {
		t.Fatalf("unmarshal headers: %v", err)
	}
	if decoded["event_id"] != attrs["event_id"] {
		t.Fatal("headers must round-trip attributes")
	}
}

func TestFormatEventType(t *testing.T) {
	cases := map[events.Kind]string{
		events.KindVideoCreated:     "video.created",
		events.KindVideoReady:       "video.ready",
		events.KindVideoFailed:      "video.failed",
		events.KindVideoDeleted:     "video.deleted",
		events.KindCommentCreated:   "comment.created",
		events.KindCommentMentioned: "comment.mentioned",
		events.KindUnknown:          "event.unknown",
	}
	for kind, want := range cases {
		if got := events.FormatEventType(kind); got != want {
			t.Fatalf("kind %d: expected %s, got %s", kind, want, got)
		}
	}
}
