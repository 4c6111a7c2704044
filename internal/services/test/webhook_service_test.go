package services_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-review/internal/models/po"
	"github.com/bionicotaku/lingo-services-review/internal/repositories"
	"github.com/bionicotaku/lingo-services-review/internal/services"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func TestHandleStatusEventRejectsUnconfiguredProvider(t *testing.T) {
	repo := &webhookVideoRepoStub{}
	svc := newWebhookService(repo, &outboxRepoStub{}, &mediaGatewayStub{configured: false, libraryID: 42})

	result, err := svc.HandleStatusEvent(context.Background(), services.StatusEvent{LibraryID: 42, VideoGUID: "guid-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure result when provider is not configured")
	}
	if result.Message != "provider credentials not configured" {
		t.Fatalf("unexpected message: %s", result.Message)
	}
}

func TestHandleStatusEventRejectsLibraryMismatch(t *testing.T) {
	svc := newWebhookService(&webhookVideoRepoStub{}, &outboxRepoStub{}, &mediaGatewayStub{configured: true, libraryID: 42})

	result, err := svc.HandleStatusEvent(context.Background(), services.StatusEvent{LibraryID: 7, VideoGUID: "guid-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure result for library mismatch")
	}
	if result.Message != "library id mismatch" {
		t.Fatalf("unexpected message: %s", result.Message)
	}
}

func TestHandleStatusEventRequiresGUID(t *testing.T) {
	svc := newWebhookService(&webhookVideoRepoStub{}, &outboxRepoStub{}, &mediaGatewayStub{configured: true, libraryID: 42})

	result, err := svc.HandleStatusEvent(context.Background(), services.StatusEvent{LibraryID: 42, VideoGUID: "  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure result for empty guid")
	}
}

func TestHandleStatusEventUnknownVideo(t *testing.T) {
	svc := newWebhookService(&webhookVideoRepoStub{}, &outboxRepoStub{}, &mediaGatewayStub{configured: true, libraryID: 42})

	result, err := svc.HandleStatusEvent(context.Background(), services.StatusEvent{LibraryID: 42, VideoGUID: "missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure result for unknown video")
	}
	if result.Message != "video not found" {
		t.Fatalf("unexpected message: %s", result.Message)
	}
}

func TestHandleStatusEventLookupFailure(t *testing.T) {
	repo := &webhookVideoRepoStub{findErr: errors.New("connection reset")}
	svc := newWebhookService(repo, &outboxRepoStub{}, &mediaGatewayStub{configured: true, libraryID: 42})

	if _, err := svc.HandleStatusEvent(context.Background(), services.StatusEvent{LibraryID: 42, VideoGUID: "guid-1"}); err == nil {
		t.Fatal("expected error for storage failure")
	}
}

func TestHandleStatusEventTerminalStateNoOp(t *testing.T) {
	repo := &webhookVideoRepoStub{video: newWebhookVideo(po.VideoStatusReady)}
	outbox := &outboxRepoStub{}
	svc := newWebhookService(repo, outbox, &mediaGatewayStub{configured: true, libraryID: 42})

	result, err := svc.HandleStatusEvent(context.Background(), services.StatusEvent{
		LibraryID:  42,
		VideoGUID:  "guid-1",
		StatusCode: po.ProviderStatusEncoding,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success for terminal no-op, got %s", result.Message)
	}
	if repo.processingCalls != 0 {
		t.Fatal("expected no transition on terminal video")
	}
	if len(outbox.events()) != 0 {
		t.Fatal("expected no outbox writes on terminal video")
	}
}

func TestHandleStatusEventAdvancesToProcessing(t *testing.T) {
	repo := &webhookVideoRepoStub{video: newWebhookVideo(po.VideoStatusUploading)}
	svc := newWebhookService(repo, &outboxRepoStub{}, &mediaGatewayStub{configured: true, libraryID: 42})

	result, err := svc.HandleStatusEvent(context.Background(), services.StatusEvent{
		LibraryID:  42,
		VideoGUID:  "guid-1",
		StatusCode: po.ProviderStatusQueued,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %s", result.Message)
	}
	if repo.processingCalls != 1 {
		t.Fatalf("expected 1 MarkProcessing call, got %d", repo.processingCalls)
	}
}

func TestHandleStatusEventProcessingIdempotent(t *testing.T) {
	repo := &webhookVideoRepoStub{video: newWebhookVideo(po.VideoStatusProcessing)}
	svc := newWebhookService(repo, &outboxRepoStub{}, &mediaGatewayStub{configured: true, libraryID: 42})

	result, err := svc.HandleStatusEvent(context.Background(), services.StatusEvent{
		LibraryID:  42,
		VideoGUID:  "guid-1",
		StatusCode: po.ProviderStatusEncoding,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success for repeated processing event, got %s", result.Message)
	}
	if repo.processingCalls != 0 {
		t.Fatal("expected no MarkProcessing call when already processing")
	}
}

func TestHandleStatusEventProcessingStaleTransition(t *testing.T) {
	repo := &webhookVideoRepoStub{
		video:         newWebhookVideo(po.VideoStatusUploading),
		processingErr: repositories.ErrStaleTransition,
	}
	svc := newWebhookService(repo, &outboxRepoStub{}, &mediaGatewayStub{configured: true, libraryID: 42})

	result, err := svc.HandleStatusEvent(context.Background(), services.StatusEvent{
		LibraryID:  42,
		VideoGUID:  "guid-1",
		StatusCode: po.ProviderStatusQueued,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected stale transition to resolve as success, got %s", result.Message)
	}
}

func TestHandleStatusEventCompletionMarksReady(t *testing.T) {
	repo := &webhookVideoRepoStub{video: newWebhookVideo(po.VideoStatusProcessing)}
	outbox := &outboxRepoStub{}
	gateway := &mediaGatewayStub{
		configured: true,
		libraryID:  42,
		meta: &po.ProviderVideoMetadata{
			GUID:              "guid-1",
			LengthSeconds:     321,
			Width:             1920,
			Height:            1080,
			FrameRate:         29.97,
			ThumbnailFileName: "thumbnail_5.jpg",
		},
	}
	svc := newWebhookService(repo, outbox, gateway)

	result, err := svc.HandleStatusEvent(context.Background(), services.StatusEvent{
		LibraryID:  42,
		VideoGUID:  "guid-1",
		StatusCode: po.ProviderStatusFinished,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %s", result.Message)
	}
	if repo.gotMedia == nil {
		t.Fatal("expected MarkReady to receive media attributes")
	}
	if repo.gotMedia.DurationSeconds != 321 || repo.gotMedia.Width != 1920 || repo.gotMedia.Height != 1080 {
		t.Fatalf("unexpected media: %+v", repo.gotMedia)
	}
	if repo.gotMedia.ThumbnailURL != "https://cdn.test/guid-1/thumbnail_5.jpg" {
		t.Fatalf("unexpected thumbnail url: %s", repo.gotMedia.ThumbnailURL)
	}
	if repo.gotMedia.PlaybackURL != "https://cdn.test/guid-1/playlist.m3u8" {
		t.Fatalf("unexpected playback url: %s", repo.gotMedia.PlaybackURL)
	}

	types := outbox.eventTypes()
	if len(types) != 1 || types[0] != "video.ready" {
		t.Fatalf("expected single video.ready event, got %v", types)
	}
}

func TestHandleStatusEventCompletionMetadataFetchFailure(t *testing.T) {
	repo := &webhookVideoRepoStub{video: newWebhookVideo(po.VideoStatusProcessing)}
	outbox := &outboxRepoStub{}
	gateway := &mediaGatewayStub{configured: true, libraryID: 42, metaErr: errors.New("upstream 500")}
	svc := newWebhookService(repo, outbox, gateway)

	result, err := svc.HandleStatusEvent(context.Background(), services.StatusEvent{
		LibraryID:  42,
		VideoGUID:  "guid-1",
		StatusCode: po.ProviderStatusResolutionFinished,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %s", result.Message)
	}
	if repo.gotFailedMsg != "failed to retrieve video metadata after encoding" {
		t.Fatalf("unexpected failure message: %s", repo.gotFailedMsg)
	}

	types := outbox.eventTypes()
	if len(types) != 1 || types[0] != "video.failed" {
		t.Fatalf("expected single video.failed event, got %v", types)
	}
}

func TestHandleStatusEventFailureUsesTranscodingDiagnostic(t *testing.T) {
	repo := &webhookVideoRepoStub{video: newWebhookVideo(po.VideoStatusProcessing)}
	gateway := &mediaGatewayStub{
		configured: true,
		libraryID:  42,
		meta: &po.ProviderVideoMetadata{
			GUID:                "guid-1",
			TranscodingMessages: []string{"  ", "unsupported codec in source file"},
		},
	}
	svc := newWebhookService(repo, &outboxRepoStub{}, gateway)

	result, err := svc.HandleStatusEvent(context.Background(), services.StatusEvent{
		LibraryID:  42,
		VideoGUID:  "guid-1",
		StatusCode: po.ProviderStatusFailed,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %s", result.Message)
	}
	if repo.gotFailedMsg != "unsupported codec in source file" {
		t.Fatalf("expected transcoding diagnostic, got %s", repo.gotFailedMsg)
	}
}

func TestHandleStatusEventFailureFallsBackWithoutMetadata(t *testing.T) {
	repo := &webhookVideoRepoStub{video: newWebhookVideo(po.VideoStatusProcessing)}
	gateway := &mediaGatewayStub{configured: true, libraryID: 42, metaErr: errors.New("timeout")}
	svc := newWebhookService(repo, &outboxRepoStub{}, gateway)

	result, err := svc.HandleStatusEvent(context.Background(), services.StatusEvent{
		LibraryID:  42,
		VideoGUID:  "guid-1",
		StatusCode: po.ProviderStatusFailed,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %s", result.Message)
	}
	if repo.gotFailedMsg != "video processing failed" {
		t.Fatalf("expected generic failure message, got %s", repo.gotFailedMsg)
	}
}

func TestHandleStatusEventIgnoresInformationalCodes(t *testing.T) {
	for _, code := range []po.ProviderStatus{po.ProviderStatusPresignedStarted, po.ProviderStatusCaptionsGenerated} {
		repo := &webhookVideoRepoStub{video: newWebhookVideo(po.VideoStatusProcessing)}
		outbox := &outboxRepoStub{}
		svc := newWebhookService(repo, outbox, &mediaGatewayStub{configured: true, libraryID: 42})

		result, err := svc.HandleStatusEvent(context.Background(), services.StatusEvent{
			LibraryID:  42,
			VideoGUID:  "guid-1",
			StatusCode: code,
		})
		if err != nil {
			t.Fatalf("code %d: unexpected error: %v", code, err)
		}
		if !result.Success {
			t.Fatalf("code %d: expected success, got %s", code, result.Message)
		}
		if repo.processingCalls != 0 || repo.gotMedia != nil || repo.gotFailedMsg != "" {
			t.Fatalf("code %d: expected no state transition", code)
		}
		if len(outbox.events()) != 0 {
			t.Fatalf("code %d: expected no outbox writes", code)
		}
	}
}

// 乱序回放：finished 先到并落终态后，迟到的 encoding 事件必须被吸收。
func TestHandleStatusEventLateEncodingAfterReady(t *testing.T) {
	repo := &webhookVideoRepoStub{video: newWebhookVideo(po.VideoStatusProcessing)}
	gateway := &mediaGatewayStub{
		configured: true,
		libraryID:  42,
		meta:       &po.ProviderVideoMetadata{GUID: "guid-1", LengthSeconds: 10},
	}
	svc := newWebhookService(repo, &outboxRepoStub{}, gateway)

	ctx := context.Background()
	if _, err := svc.HandleStatusEvent(ctx, services.StatusEvent{LibraryID: 42, VideoGUID: "guid-1", StatusCode: po.ProviderStatusFinished}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.HandleStatusEvent(ctx, services.StatusEvent{LibraryID: 42, VideoGUID: "guid-1", StatusCode: po.ProviderStatusEncoding})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected late event to be absorbed, got %s", result.Message)
	}
	if repo.processingCalls != 0 {
		t.Fatal("expected no processing transition after terminal state")
	}
}

func newWebhookService(repo services.WebhookVideoRepo, outbox services.WebhookOutboxWriter, gateway services.WebhookMediaGateway) *services.WebhookService {
	return services.NewWebhookService(repo, outbox, gateway, noopTxManager{}, testLogger())
}

func newWebhookVideo(status po.VideoStatus) *po.Video {
	now := time.Now().UTC()
	return &po.Video{
		VideoID:      uuid.New(),
		ProjectID:    uuid.New(),
		UploaderID:   uuid.New(),
		ProviderGUID: "guid-1",
		LibraryID:    42,
		Title:        "draft cut",
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testLogger() log.Logger {
	return log.NewStdLogger(io.Discard)
}

// ---- stubs ----

type webhookVideoRepoStub struct {
	video         *po.Video
	findErr       error
	processingErr error
	readyErr      error
	failedErr     error

	processingCalls int
	gotMedia        *po.ReadyMedia
	gotFailedMsg    string
}

func (s *webhookVideoRepoStub) FindByProviderGUID(_ context.Context, _ txmanager.Session, guid string) (*po.Video, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.video == nil || s.video.ProviderGUID != guid {
		return nil, repositories.ErrVideoNotFound
	}
	return s.video, nil
}

func (s *webhookVideoRepoStub) MarkProcessing(_ context.Context, _ txmanager.Session, _ uuid.UUID) (*po.Video, error) {
	if s.processingErr != nil {
		return nil, s.processingErr
	}
	s.processingCalls++
	s.video.Status = po.VideoStatusProcessing
	return s.video, nil
}

func (s *webhookVideoRepoStub) MarkReady(_ context.Context, _ txmanager.Session, _ uuid.UUID, media po.ReadyMedia) (*po.Video, error) {
	if s.readyErr != nil {
		return nil, s.readyErr
	}
	if s.video.Status.IsTerminal() {
		return nil, repositories.ErrStaleTransition
	}
	s.gotMedia = &media
	s.video.Status = po.VideoStatusReady
	s.video.UpdatedAt = time.Now().UTC()
	return s.video, nil
}

func (s *webhookVideoRepoStub) MarkFailed(_ context.Context, _ txmanager.Session, _ uuid.UUID, message string) (*po.Video, error) {
	if s.failedErr != nil {
		return nil, s.failedErr
	}
	if s.video.Status.IsTerminal() {
		return nil, repositories.ErrStaleTransition
	}
	s.gotFailedMsg = message
	s.video.Status = po.VideoStatusFailed
	s.video.UpdatedAt = time.Now().UTC()
	return s.video, nil
}

type mediaGatewayStub struct {
	configured bool
	libraryID  int64
	meta       *po.ProviderVideoMetadata
	metaErr    error
}

func (s *mediaGatewayStub) Configured() bool { return s.configured }
func (s *mediaGatewayStub) LibraryID() int64 { return s.libraryID }

func (s *mediaGatewayStub) FetchVideoMetadata(_ context.Context, _ string) (*po.ProviderVideoMetadata, error) {
	if s.metaErr != nil {
		return nil, s.metaErr
	}
	return s.meta, nil
}

func (s *mediaGatewayStub) ThumbnailURL(guid, fileName string) string {
	return "https://cdn.test/" + guid + "/" + fileName
}

func (s *mediaGatewayStub) PlaybackURL(guid string) string {
	return "https://cdn.test/" + guid + "/playlist.m3u8"
}

// outboxRepoStub 记录写入的消息；mention 投递走 goroutine，需要加锁。
type outboxRepoStub struct {
	mu       sync.Mutex
	err      error
	messages []repositories.OutboxMessage
}

func (s *outboxRepoStub) Enqueue(_ context.Context, _ txmanager.Session, msg repositories.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *outboxRepoStub) events() []repositories.OutboxMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repositories.OutboxMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *outboxRepoStub) eventTypes() []string {
	events := s.events()
	types := make([]string, 0, len(events))
	for _, msg := range events {
		types = append(types, msg.EventType)
	}
	return types
}

type noopTxManager struct{}

type noopSession struct{}

func (noopSession) Tx() pgx.Tx               { return nil }
func (noopSession) Context() context.Context { return context.Background() }

func (noopTxManager) WithinTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return fn(ctx, noopSession{})
}

func (noopTxManager) WithinReadOnlyTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return fn(ctx, noopSession{})
}
