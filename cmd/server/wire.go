//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"context"

	"github.com/bionicotaku/lingo-services-review/internal/controllers"
	"github.com/bionicotaku/lingo-services-review/internal/infrastructure/bunny"
	"github.com/bionicotaku/lingo-services-review/internal/infrastructure/conf"
	"github.com/bionicotaku/lingo-services-review/internal/infrastructure/database"
	"github.com/bionicotaku/lingo-services-review/internal/infrastructure/httpserver"
	"github.com/bionicotaku/lingo-services-review/internal/infrastructure/pubsub"
	"github.com/bionicotaku/lingo-services-review/internal/infrastructure/txmgr"
	"github.com/bionicotaku/lingo-services-review/internal/repositories"
	"github.com/bionicotaku/lingo-services-review/internal/services"
	"github.com/bionicotaku/lingo-services-review/internal/tasks/outbox"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(ctx context.Context, bundle *conf.Bundle, logger log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		conf.ProviderSet,
		database.ProviderSet,
		txmgr.ProviderSet,
		pubsub.ProviderSet,
		bunny.ProviderSet,
		repositories.ProviderSet,
		services.ProviderSet,
		controllers.ProviderSet,
		httpserver.ProviderSet,
		outbox.ProviderSet,
		ProvideUploadTTL,
		wire.Bind(new(services.WebhookVideoRepo), new(*repositories.VideoRepository)),
		wire.Bind(new(services.UploadVideoRepo), new(*repositories.VideoRepository)),
		wire.Bind(new(services.CommandVideoRepo), new(*repositories.VideoRepository)),
		wire.Bind(new(services.QueryVideoRepo), new(*repositories.VideoRepository)),
		wire.Bind(new(services.UploadProjectRepo), new(*repositories.ProjectRepository)),
		wire.Bind(new(services.CommandProjectRepo), new(*repositories.ProjectRepository)),
		wire.Bind(new(services.QueryMembershipChecker), new(*repositories.ProjectRepository)),
		wire.Bind(new(services.ProjectAdminRepo), new(*repositories.ProjectRepository)),
		wire.Bind(new(services.UploadMemberRepo), new(*repositories.MemberRepository)),
		wire.Bind(new(services.CommandMemberRepo), new(*repositories.MemberRepository)),
		wire.Bind(new(services.MemberAdminRepo), new(*repositories.MemberRepository)),
		wire.Bind(new(services.CommentRepo), new(*repositories.CommentRepository)),
		wire.Bind(new(services.CommentProjectRepo), new(*repositories.ProjectRepository)),
		wire.Bind(new(services.WebhookOutboxWriter), new(*repositories.OutboxRepository)),
		wire.Bind(new(services.WebhookMediaGateway), new(*bunny.Client)),
		wire.Bind(new(services.UploadProviderGateway), new(*bunny.Client)),
		wire.Bind(new(services.ProviderDeleter), new(*bunny.Client)),
		wire.Bind(new(services.CollectionCreator), new(*bunny.Client)),
		newApp,
	))
}
