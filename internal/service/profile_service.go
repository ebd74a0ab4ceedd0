package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/internal/repository"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type profileRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ProfileService exposes account profiles with field-level write protection.
type ProfileService struct {
	repo      profileRepository
	validator *validator.Validate
	logger    *zap.Logger
	audit     auditor
}

// NewProfileService creates an instance of ProfileService.
func NewProfileService(repo profileRepository, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &ProfileService{repo: repo, validator: validate, logger: logger, audit: auditor{repo: repo, logger: logger}}
}

// List returns the profiles visible to p.
func (s *ProfileService) List(ctx context.Context, p *models.Principal, page models.PageRequest) ([]dto.ProfileResponse, *models.Pagination, error) {
	if err := Authorize(p, ActionProfileRead); err != nil {
		return nil, nil, err
	}
	users, total, err := s.repo.List(ctx, ProfileScope(p, page))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profiles")
	}
	out := make([]dto.ProfileResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewProfileResponse(&users[i]))
	}
	return out, page.Pagination(total), nil
}

// Get returns a single profile in scope.
func (s *ProfileService) Get(ctx context.Context, p *models.Principal, id string) (*dto.ProfileResponse, error) {
	if err := Authorize(p, ActionProfileRead); err != nil {
		return nil, err
	}
	user, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	res := dto.NewProfileResponse(user)
	return &res, nil
}

// Update applies the allow-listed fields. A role change from a non-administrator
// is dropped while the remaining fields persist.
func (s *ProfileService) Update(ctx context.Context, p *models.Principal, id string, req dto.UpdateProfileRequest, partial bool) (*dto.ProfileResponse, error) {
	if err := Authorize(p, ActionProfileUpdate); err != nil {
		return nil, err
	}
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		req.Username = &trimmed
	}
	if !partial && req.Username == nil {
		return nil, appErrors.Validation("invalid profile payload", map[string]string{"username": "this field is required"})
	}
	var droppedRole string
	if req.Role != nil && !p.IsAdmin {
		droppedRole = *req.Role
		req.Role = nil
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid profile payload")
	}

	user, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && !strings.EqualFold(*req.Username, user.Username) {
		taken, err := s.repo.ExistsByUsername(ctx, *req.Username)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
		}
		if taken {
			return nil, duplicateUsername()
		}
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Role != nil {
		role, _ := models.ParseRole(*req.Role)
		user.Role = role
	}
	if droppedRole != "" && droppedRole != string(user.Role) {
		s.logger.Info("role change dropped", zap.String("actor", p.UserID), zap.String("user_id", user.ID), zap.String("requested_role", droppedRole))
		s.audit.record(ctx, p.UserID, models.AuditActionRoleChangeDropped, "user", user.ID, map[string]string{"requested_role": droppedRole})
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateUsername()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	s.audit.record(ctx, p.UserID, models.AuditActionProfileUpdate, "user", user.ID, map[string]string{"username": user.Username, "role": string(user.Role)})

	res := dto.NewProfileResponse(user)
	return &res, nil
}

// Delete removes an account. Administrators only.
func (s *ProfileService) Delete(ctx context.Context, p *models.Principal, id string) error {
	if err := Authorize(p, ActionProfileDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	s.audit.record(ctx, p.UserID, models.AuditActionProfileDelete, "user", id, nil)
	return nil
}

func (s *ProfileService) load(ctx context.Context, p *models.Principal, id string) (*models.User, error) {
	if !ProfileInScope(p, id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}
