package services_test

import (
	"context"
	"testing"

	"github.com/bionicotaku/lingo-services-review/internal/models/po"
	"github.com/bionicotaku/lingo-services-review/internal/repositories"
	"github.com/bionicotaku/lingo-services-review/internal/services"

	"github.com/bionicotaku/lingo-utils/txmanager"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/google/uuid"
)

func TestGetVideoVisibleToMember(t *testing.T) {
	viewer := uuid.New()
	video := newCommandVideo(uuid.New())
	project := &po.Project{ProjectID: video.ProjectID, OwnerID: uuid.New(), Name: "p"}
	members := &commandMemberRepoStub{member: &po.ProjectMember{ProjectID: video.ProjectID, UserID: viewer, Role: po.RoleViewer}}
	svc := newVideoQueryService(&queryVideoRepoStub{video: video}, project, members)

	detail, err := svc.GetVideo(context.Background(), viewer, video.VideoID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.VideoID != video.VideoID {
		t.Fatalf("unexpected video id: %s", detail.VideoID)
	}
	if detail.Status != string(video.Status) {
		t.Fatalf("unexpected status: %s", detail.Status)
	}
}

func TestGetVideoDeniedForOutsider(t *testing.T) {
	video := newCommandVideo(uuid.New())
	project := &po.Project{ProjectID: video.ProjectID, OwnerID: uuid.New(), Name: "p"}
	svc := newVideoQueryService(&queryVideoRepoStub{video: video}, project, &commandMemberRepoStub{})

	if _, err := svc.GetVideo(context.Background(), uuid.New(), video.VideoID); !kerrors.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetVideoNotFound(t *testing.T) {
	svc := newVideoQueryService(&queryVideoRepoStub{}, nil, &commandMemberRepoStub{})

	if _, err := svc.GetVideo(context.Background(), uuid.New(), uuid.New()); !kerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListProjectVideosAsOwner(t *testing.T) {
	owner := uuid.New()
	project := &po.Project{ProjectID: uuid.New(), OwnerID: owner, Name: "p"}
	first := newCommandVideo(owner)
	second := newCommandVideo(owner)
	repo := &queryVideoRepoStub{listed: []*po.Video{first, second}}
	svc := newVideoQueryService(repo, project, &commandMemberRepoStub{})

	list, err := svc.ListProjectVideos(context.Background(), owner, project.ProjectID, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("expected 2 videos, got %d", list.Total)
	}
}

func newVideoQueryService(videos services.QueryVideoRepo, project *po.Project, members services.CommandMemberRepo) *services.VideoQueryService {
	return services.NewVideoQueryService(videos, &membershipCheckerStub{project: project}, members, testLogger())
}

// ---- stubs ----

type queryVideoRepoStub struct {
	video  *po.Video
	listed []*po.Video
}

func (s *queryVideoRepoStub) FindByID(_ context.Context, _ txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	if s.video == nil || s.video.VideoID != videoID {
		return nil, repositories.ErrVideoNotFound
	}
	return s.video, nil
}

func (s *queryVideoRepoStub) ListByProject(_ context.Context, _ uuid.UUID, _ int) ([]*po.Video, error) {
	return s.listed, nil
}

type membershipCheckerStub struct {
	project *po.Project
}

func (s *membershipCheckerStub) FindByID(_ context.Context, _ txmanager.Session, projectID uuid.UUID) (*po.Project, error) {
	if s.project == nil || s.project.ProjectID != projectID {
		return nil, repositories.ErrProjectNotFound
	}
	return s.project, nil
}
