package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/botspace/internal/models"
	"github.com/charlesng35/botspace/internal/naming"
	apperrors "github.com/charlesng35/botspace/pkg/errors"
)

// maxNameRaces bounds retries when another request claims the generated name first.
const maxNameRaces = 3

// InitializeWorkspaceInput is the payload for creating a first workspace.
type InitializeWorkspaceInput struct {
	DisplayName string `json:"display_name" validate:"required,notblank,max=128"`
}

// WorkspaceService reserves workspace names and creates workspaces with their owner membership.
type WorkspaceService struct {
	db    *gorm.DB
	names *naming.Generator
}

// NewWorkspaceService constructs the service. opts tune the name generator.
func NewWorkspaceService(db *gorm.DB, opts ...naming.Option) (*WorkspaceService, error) {
	if db == nil {
		return nil, errors.New("workspace service: db is required")
	}

	svc := &WorkspaceService{db: db}
	svc.names = naming.NewGenerator(svc.nameExists, opts...)
	return svc, nil
}

// Initialize creates a workspace owned by user under a freshly reserved unique name.
func (s *WorkspaceService) Initialize(ctx context.Context, user *models.User, input InitializeWorkspaceInput) Result[*models.Workspace] {
	return Execute(ctx, "Failed to initialize the workspace", func(ctx context.Context) (*models.Workspace, error) {
		if user == nil || user.ID == "" {
			return nil, apperrors.ErrUnauthorized
		}

		displayName := strings.TrimSpace(input.DisplayName)
		for attempt := 0; ; attempt++ {
			name, err := s.names.Generate(ctx, displayName)
			if err != nil {
				return nil, err
			}

			workspace, err := s.create(ctx, user.ID, name, displayName)
			if err == nil {
				return workspace, nil
			}
			if !isUniqueConstraintError(err) || attempt+1 >= maxNameRaces {
				return nil, err
			}
		}
	})
}

// ListForUser returns the workspaces user belongs to.
func (s *WorkspaceService) ListForUser(ctx context.Context, userID string) Result[[]models.Workspace] {
	return Execute(ctx, "Failed to get workspaces", func(ctx context.Context) ([]models.Workspace, error) {
		var workspaces []models.Workspace
		err := s.db.WithContext(ctx).
			Joins("JOIN workspace_memberships ON workspace_memberships.workspace_id = workspaces.id").
			Where("workspace_memberships.user_id = ?", userID).
			Order("workspaces.created_at ASC").
			Find(&workspaces).Error
		if err != nil {
			return nil, fmt.Errorf("workspace service: list: %w", err)
		}
		return workspaces, nil
	})
}

func (s *WorkspaceService) create(ctx context.Context, ownerID, name, displayName string) (*models.Workspace, error) {
	workspace := &models.Workspace{
		Name:        name,
		DisplayName: displayName,
		OwnerID:     ownerID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			return fmt.Errorf("workspace service: create workspace: %w", err)
		}

		membership := models.WorkspaceMembership{
			WorkspaceID: workspace.ID,
			UserID:      ownerID,
			Role:        models.WorkspaceRoleOwner,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return fmt.Errorf("workspace service: create membership: %w", err)
		}
		workspace.Memberships = []models.WorkspaceMembership{membership}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return workspace, nil
}

func (s *WorkspaceService) nameExists(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Workspace{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("workspace service: lookup name: %w", err)
	}
	return count > 0, nil
}
