package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bionicotaku/lingo-services-review/internal/models/po"
	"github.com/bionicotaku/lingo-services-review/internal/repositories"
	"github.com/bionicotaku/lingo-services-review/internal/services"

	"github.com/bionicotaku/lingo-utils/txmanager"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/google/uuid"
)

func TestCreateProjectLinksProviderCollection(t *testing.T) {
	projects := &projectAdminRepoStub{}
	gateway := &collectionCreatorStub{configured: true, collectionID: "col-1"}
	svc := newProjectService(projects, &memberAdminRepoStub{}, gateway)

	detail, err := svc.CreateProject(context.Background(), services.CreateProjectInput{
		OwnerID: uuid.New(),
		Name:    "  spring campaign  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Name != "spring campaign" {
		t.Fatalf("expected trimmed name, got %q", detail.Name)
	}
	if detail.ProviderCollectionID == nil || *detail.ProviderCollectionID != "col-1" {
		t.Fatalf("expected provider collection col-1, got %v", detail.ProviderCollectionID)
	}
	if len(projects.collections) != 1 || projects.collections[0] != "col-1" {
		t.Fatalf("expected collection to be persisted, got %v", projects.collections)
	}
}

func TestCreateProjectToleratesCollectionFailure(t *testing.T) {
	projects := &projectAdminRepoStub{}
	gateway := &collectionCreatorStub{configured: true, err: errors.New("upstream 500")}
	svc := newProjectService(projects, &memberAdminRepoStub{}, gateway)

	detail, err := svc.CreateProject(context.Background(), services.CreateProjectInput{
		OwnerID: uuid.New(),
		Name:    "teaser",
	})
	if err != nil {
		t.Fatalf("collection failure must not fail project creation: %v", err)
	}
	if detail.ProviderCollectionID != nil {
		t.Fatal("expected no collection id after provider failure")
	}
}

func TestCreateProjectSkipsCollectionWhenUnconfigured(t *testing.T) {
	gateway := &collectionCreatorStub{configured: false}
	svc := newProjectService(&projectAdminRepoStub{}, &memberAdminRepoStub{}, gateway)

	if _, err := svc.CreateProject(context.Background(), services.CreateProjectInput{
		OwnerID: uuid.New(),
		Name:    "teaser",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gateway.calls != 0 {
		t.Fatal("expected no collection call without credentials")
	}
}

func TestCreateProjectRequiresName(t *testing.T) {
	svc := newProjectService(&projectAdminRepoStub{}, &memberAdminRepoStub{}, &collectionCreatorStub{})

	if _, err := svc.CreateProject(context.Background(), services.CreateProjectInput{
		OwnerID: uuid.New(),
		Name:    "   ",
	}); !kerrors.IsBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestUpdateProjectOwnerOnly(t *testing.T) {
	owner := uuid.New()
	project := &po.Project{ProjectID: uuid.New(), OwnerID: owner, Name: "draft"}
	svc := newProjectService(&projectAdminRepoStub{project: project}, &memberAdminRepoStub{}, &collectionCreatorStub{})

	name := "final"
	if _, err := svc.UpdateProject(context.Background(), services.UpdateProjectInput{
		CallerID:  uuid.New(),
		ProjectID: project.ProjectID,
		Name:      &name,
	}); !kerrors.IsForbidden(err) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	padded := "  final  "
	detail, err := svc.UpdateProject(context.Background(), services.UpdateProjectInput{
		CallerID:  owner,
		ProjectID: project.ProjectID,
		Name:      &padded,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Name != "final" {
		t.Fatalf("expected trimmed name, got %q", detail.Name)
	}
}

func TestUpdateProjectRejectsEmptyInput(t *testing.T) {
	owner := uuid.New()
	project := &po.Project{ProjectID: uuid.New(), OwnerID: owner, Name: "draft"}
	svc := newProjectService(&projectAdminRepoStub{project: project}, &memberAdminRepoStub{}, &collectionCreatorStub{})

	if _, err := svc.UpdateProject(context.Background(), services.UpdateProjectInput{
		CallerID:  owner,
		ProjectID: project.ProjectID,
	}); !kerrors.IsBadRequest(err) {
		t.Fatalf("expected bad request for empty update, got %v", err)
	}

	blank := "   "
	if _, err := svc.UpdateProject(context.Background(), services.UpdateProjectInput{
		CallerID:  owner,
		ProjectID: project.ProjectID,
		Name:      &blank,
	}); !kerrors.IsBadRequest(err) {
		t.Fatalf("expected bad request for blank name, got %v", err)
	}
}

func TestDeleteProjectRefusesWhenVideosRemain(t *testing.T) {
	owner := uuid.New()
	project := &po.Project{ProjectID: uuid.New(), OwnerID: owner, Name: "p", VideoCount: 2}
	projects := &projectAdminRepoStub{project: project}
	svc := newProjectService(projects, &memberAdminRepoStub{}, &collectionCreatorStub{})

	err := svc.DeleteProject(context.Background(), owner, project.ProjectID)
	if !kerrors.IsBadRequest(err) {
		t.Fatalf("expected bad request for non-empty project, got %v", err)
	}
	if got := kerrors.FromError(err).GetReason(); got != services.ReasonProjectNotEmpty {
		t.Fatalf("unexpected reason: %s", got)
	}
	if len(projects.deleted) != 0 {
		t.Fatal("expected no delete call for non-empty project")
	}
}

func TestDeleteProjectOwnerOnly(t *testing.T) {
	owner := uuid.New()
	project := &po.Project{ProjectID: uuid.New(), OwnerID: owner, Name: "p"}
	projects := &projectAdminRepoStub{project: project}
	svc := newProjectService(projects, &memberAdminRepoStub{}, &collectionCreatorStub{})

	if err := svc.DeleteProject(context.Background(), uuid.New(), project.ProjectID); !kerrors.IsForbidden(err) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	if err := svc.DeleteProject(context.Background(), owner, project.ProjectID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(projects.deleted) != 1 || projects.deleted[0] != project.ProjectID {
		t.Fatalf("expected project delete to be recorded, got %v", projects.deleted)
	}
}

func TestAddMemberOwnerOnly(t *testing.T) {
	owner := uuid.New()
	project := &po.Project{ProjectID: uuid.New(), OwnerID: owner, Name: "p"}
	members := &memberAdminRepoStub{}
	svc := newProjectService(&projectAdminRepoStub{project: project}, members, &collectionCreatorStub{})

	if _, err := svc.AddMember(context.Background(), uuid.New(), project.ProjectID, uuid.New(), po.RoleEditor); !kerrors.IsForbidden(err) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	view, err := svc.AddMember(context.Background(), owner, project.ProjectID, uuid.New(), po.RoleReviewer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Role != "reviewer" {
		t.Fatalf("unexpected role: %s", view.Role)
	}
	if len(members.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(members.upserted))
	}
}

func TestAddMemberRejectsOwnerAndInvalidRole(t *testing.T) {
	owner := uuid.New()
	project := &po.Project{ProjectID: uuid.New(), OwnerID: owner, Name: "p"}
	svc := newProjectService(&projectAdminRepoStub{project: project}, &memberAdminRepoStub{}, &collectionCreatorStub{})

	if _, err := svc.AddMember(context.Background(), owner, project.ProjectID, owner, po.RoleEditor); !kerrors.IsBadRequest(err) {
		t.Fatalf("expected bad request when adding owner as member, got %v", err)
	}
	if _, err := svc.AddMember(context.Background(), owner, project.ProjectID, uuid.New(), po.ProjectRole("admin")); !kerrors.IsBadRequest(err) {
		t.Fatalf("expected bad request for unknown role, got %v", err)
	}
}

func TestRemoveMemberNotFound(t *testing.T) {
	owner := uuid.New()
	project := &po.Project{ProjectID: uuid.New(), OwnerID: owner, Name: "p"}
	members := &memberAdminRepoStub{removeErr: repositories.ErrMemberNotFound}
	svc := newProjectService(&projectAdminRepoStub{project: project}, members, &collectionCreatorStub{})

	if err := svc.RemoveMember(context.Background(), owner, project.ProjectID, uuid.New()); !kerrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetProjectDeniedForOutsider(t *testing.T) {
	project := &po.Project{ProjectID: uuid.New(), OwnerID: uuid.New(), Name: "p"}
	svc := newProjectService(&projectAdminRepoStub{project: project}, &memberAdminRepoStub{}, &collectionCreatorStub{})

	if _, err := svc.GetProject(context.Background(), uuid.New(), project.ProjectID); !kerrors.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestListMembersVisibleToMembers(t *testing.T) {
	owner := uuid.New()
	viewer := uuid.New()
	project := &po.Project{ProjectID: uuid.New(), OwnerID: owner, Name: "p"}
	members := &memberAdminRepoStub{
		member: &po.ProjectMember{ProjectID: project.ProjectID, UserID: viewer, Role: po.RoleViewer},
		list: []*po.ProjectMember{
			{ProjectID: project.ProjectID, UserID: viewer, Role: po.RoleViewer},
			{ProjectID: project.ProjectID, UserID: uuid.New(), Role: po.RoleEditor},
		},
	}
	svc := newProjectService(&projectAdminRepoStub{project: project}, members, &collectionCreatorStub{})

	list, err := svc.ListMembers(context.Background(), viewer, project.ProjectID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("expected 2 members, got %d", list.Total)
	}
}

func newProjectService(projects services.ProjectAdminRepo, members services.MemberAdminRepo, gateway services.CollectionCreator) *services.ProjectService {
	return services.NewProjectService(projects, members, gateway, noopTxManager{}, testLogger())
}

// ---- stubs ----

type projectAdminRepoStub struct {
	project     *po.Project
	createErr   error
	collections []string
	setErr      error
	listed      []*po.Project
	deleted     []uuid.UUID
	deleteErr   error
}

func (s *projectAdminRepoStub) Create(_ context.Context, _ txmanager.Session, project *po.Project) (*po.Project, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return project, nil
}

func (s *projectAdminRepoStub) FindByID(_ context.Context, _ txmanager.Session, projectID uuid.UUID) (*po.Project, error) {
	if s.project == nil || s.project.ProjectID != projectID {
		return nil, repositories.ErrProjectNotFound
	}
	return s.project, nil
}

func (s *projectAdminRepoStub) Update(_ context.Context, _ txmanager.Session, projectID uuid.UUID, name, description *string) (*po.Project, error) {
	if s.project == nil || s.project.ProjectID != projectID {
		return nil, repositories.ErrProjectNotFound
	}
	if name != nil {
		s.project.Name = *name
	}
	if description != nil {
		s.project.Description = description
	}
	return s.project, nil
}

func (s *projectAdminRepoStub) Delete(_ context.Context, _ txmanager.Session, projectID uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, projectID)
	return nil
}

func (s *projectAdminRepoStub) SetProviderCollection(_ context.Context, _ txmanager.Session, _ uuid.UUID, collectionID string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.collections = append(s.collections, collectionID)
	return nil
}

func (s *projectAdminRepoStub) ListByMember(_ context.Context, _ uuid.UUID, _ int) ([]*po.Project, error) {
	return s.listed, nil
}

type memberAdminRepoStub struct {
	member    *po.ProjectMember
	upserted  []*po.ProjectMember
	removeErr error
	list      []*po.ProjectMember
}

func (s *memberAdminRepoStub) Upsert(_ context.Context, _ txmanager.Session, member *po.ProjectMember) (*po.ProjectMember, error) {
	s.upserted = append(s.upserted, member)
	return member, nil
}

func (s *memberAdminRepoStub) Remove(_ context.Context, _ txmanager.Session, _, _ uuid.UUID) error {
	return s.removeErr
}

func (s *memberAdminRepoStub) Find(_ context.Context, _ txmanager.Session, projectID, userID uuid.UUID) (*po.ProjectMember, error) {
	if s.member == nil || s.member.ProjectID != projectID || s.member.UserID != userID {
		return nil, repositories.ErrMemberNotFound
	}
	return s.member, nil
}

func (s *memberAdminRepoStub) ListByProject(_ context.Context, _ uuid.UUID) ([]*po.ProjectMember, error) {
	return s.list, nil
}

type collectionCreatorStub struct {
	configured   bool
	collectionID string
	err          error
	calls        int
}

func (s *collectionCreatorStub) Configured() bool { return s.configured }

func (s *collectionCreatorStub) CreateCollection(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.collectionID, nil
}
