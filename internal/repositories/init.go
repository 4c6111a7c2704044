package repositories

import "github.com/google/wire"

// ProviderSet is repositories providers.
var ProviderSet = wire.NewSet(
	NewVideoRepository,
	NewProjectRepository,
	NewMemberRepository,
	NewCommentRepository,
	NewOutboxRepository,
)
