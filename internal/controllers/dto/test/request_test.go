package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/bionicotaku/lingo-services-review/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-review/internal/models/po"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCreateUploadInput(t *testing.T) {
	projectID := uuid.New()
	userID := uuid.New()

	t.Run("with previous version", func(t *testing.T) {
		previous := uuid.New().String()
		req := dto.CreateUploadRequest{Title: "rough cut", PreviousVersionID: &previous}

		input, err := req.ToCreateUploadInput(projectID, userID)

		require.NoError(t, err)
		assert.Equal(t, projectID, input.ProjectID)
		assert.Equal(t, userID, input.UserID)
		assert.Equal(t, "rough cut", input.Title)
		require.NotNil(t, input.PreviousVersionID)
		assert.Equal(t, previous, input.PreviousVersionID.String())
	})

	t.Run("without previous version", func(t *testing.T) {
		req := dto.CreateUploadRequest{Title: "rough cut"}

		input, err := req.ToCreateUploadInput(projectID, userID)

		require.NoError(t, err)
		assert.Nil(t, input.PreviousVersionID)
	})

	t.Run("invalid previous version", func(t *testing.T) {
		previous := "not-a-uuid"
		req := dto.CreateUploadRequest{Title: "rough cut", PreviousVersionID: &previous}

		_, err := req.ToCreateUploadInput(projectID, userID)

		require.Error(t, err)
	})
}

func TestToDeleteVideosInput(t *testing.T) {
	userID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	t.Run("valid ids", func(t *testing.T) {
		req := dto.BatchDeleteVideosRequest{VideoIDs: []string{first.String(), second.String()}}

		input, err := req.ToDeleteVideosInput(userID)

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{first, second}, input.VideoIDs)
		assert.Equal(t, userID, input.UserID)
	})

	t.Run("invalid entry aborts", func(t *testing.T) {
		req := dto.BatchDeleteVideosRequest{VideoIDs: []string{first.String(), "broken"}}

		_, err := req.ToDeleteVideosInput(userID)

		require.Error(t, err)
	})
}

func TestToCreateCommentInput(t *testing.T) {
	videoID := uuid.New()
	userID := uuid.New()
	mention := uuid.New()

	timecode := 12.5
	parent := uuid.New().String()
	req := dto.CreateCommentRequest{
		Body:            "check this frame",
		TimecodeSeconds: &timecode,
		ParentID:        &parent,
		Mentions:        []string{mention.String()},
	}

	input, err := req.ToCreateCommentInput(videoID, userID)

	require.NoError(t, err)
	assert.Equal(t, videoID, input.VideoID)
	assert.Equal(t, userID, input.UserID)
	require.NotNil(t, input.TimecodeSeconds)
	assert.Equal(t, 12.5, *input.TimecodeSeconds)
	require.NotNil(t, input.ParentID)
	assert.Equal(t, parent, input.ParentID.String())
	assert.Equal(t, []uuid.UUID{mention}, input.Mentions)
}

// Webhook 载荷字段名必须与服务商推送的 PascalCase JSON 精确匹配。
func TestProviderWebhookRequestDecoding(t *testing.T) {
	payload := []byte(`{"VideoLibraryId":42,"VideoGuid":"abc-123","Status":3}`)

	var req dto.ProviderWebhookRequest
	require.NoError(t, json.Unmarshal(payload, &req))

	event := req.ToStatusEvent()
	assert.Equal(t, int64(42), event.LibraryID)
	assert.Equal(t, "abc-123", event.VideoGUID)
	assert.Equal(t, po.ProviderStatusFinished, event.StatusCode)
}
