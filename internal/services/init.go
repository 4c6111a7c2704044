package services

import "github.com/google/wire"

// ProviderSet is services providers.
var ProviderSet = wire.NewSet(
	NewWebhookService,
	NewUploadService,
	NewVideoCommandService,
	NewVideoQueryService,
	NewProjectService,
	NewCommentService,
)
