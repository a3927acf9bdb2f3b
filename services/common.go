package services

import (
	"context"
	"errors"

	"KinderTube/apperrors"
	"KinderTube/models"
	"KinderTube/observability"
	"KinderTube/repositories"
)

// persistErr wraps a repository failure for the API.
func persistErr(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NotFound("%s: not found", message)
	case errors.Is(err, repositories.ErrVersionConflict):
		observability.VersionConflicts.Inc()
		return apperrors.Conflict("profile was modified concurrently, retry")
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.Conflict("%s: already exists", message)
	}
	return apperrors.Internal(message, err)
}

func requireParent(caller models.Caller) error {
	if !caller.IsParent() {
		return apperrors.Forbidden("parent session required")
	}
	return nil
}

func requireChild(caller models.Caller) error {
	if !caller.IsChild() {
		return apperrors.Forbidden("child session required")
	}
	return nil
}

func requireAdmin(caller models.Caller) error {
	if !caller.IsAdmin() {
		return apperrors.Forbidden("admin role required")
	}
	return nil
}

// loadOwnedChild fetches an active profile of the caller's family.
func loadOwnedChild(ctx context.Context, repo repositories.ChildRepository, caller models.Caller, childID uint) (*models.ChildProfile, error) {
	child, err := repo.FindByID(ctx, childID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("child profile not found")
		}
		return nil, apperrors.Internal("failed to load child profile", err)
	}
	if !child.IsActive {
		return nil, apperrors.NotFound("child profile not found")
	}
	if child.ParentID != caller.ParentID {
		return nil, apperrors.Forbidden("child profile belongs to another parent")
	}
	return &child, nil
}

// firstActiveChild is the profile a child session acts on: the lowest id.
func firstActiveChild(ctx context.Context, repo repositories.ChildRepository, parentID uint) (*models.ChildProfile, error) {
	children, err := repo.ListActiveByParent(ctx, parentID)
	if err != nil {
		return nil, apperrors.Internal("failed to load child profiles", err)
	}
	if len(children) == 0 {
		return nil, apperrors.NotFound("no active child profile")
	}
	return &children[0], nil
}

func videosByID(ctx context.Context, repo repositories.VideoRepository, ids []uint) (map[uint]models.Video, error) {
	videos, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal("failed to load videos", err)
	}
	byID := make(map[uint]models.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}
	return byID, nil
}
