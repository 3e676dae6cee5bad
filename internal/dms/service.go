// Package dms implements the follow-up state machine for tracked outreach
// records: creation, edits, status transitions that move the follow-up date,
// and ownership-scoped deletion.
package dms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/applyfast/cold-dm-tracker/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound covers both a missing record and a record owned by someone
// else. Callers get one indistinguishable failure so record existence never
// leaks across users.
var ErrNotFound = errors.New("DM not found")

// ValidationError is a field-level rejection raised before anything is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Input carries the caller-editable fields of a DM.
type Input struct {
	Name         string          `json:"name"`
	Platform     models.Platform `json:"platform"`
	FollowupDate time.Time       `json:"followup_date"`
	Note         string          `json:"note"`
}

func (in *Input) validate() error {
	if in.Name == "" {
		return &ValidationError{Field: "name", Message: "Name is required"}
	}
	if !in.Platform.Valid() {
		return &ValidationError{Field: "platform", Message: "Platform must be X or LinkedIn"}
	}
	if in.FollowupDate.IsZero() {
		return &ValidationError{Field: "followup_date", Message: "Follow-up date is required"}
	}
	return nil
}

// Service owns all reads and writes of DM records. The store handle is
// injected; concurrency control is left to the database (a record has one
// owner, last write wins).
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Create logs a new DM for owner. The record starts Waiting with the sent
// date stamped at the moment of the call.
func (s *Service) Create(ctx context.Context, ownerID uint, in Input) (*models.DM, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	dm := models.DM{
		UserID:       ownerID,
		Name:         in.Name,
		Platform:     in.Platform,
		SentDate:     s.now(),
		FollowupDate: in.FollowupDate,
		Status:       models.StatusWaiting,
		Note:         in.Note,
	}
	if err := s.db.WithContext(ctx).Create(&dm).Error; err != nil {
		return nil, fmt.Errorf("create dm: %w", err)
	}
	return &dm, nil
}

// List returns all of the owner's DMs ordered by follow-up date, ties broken
// by creation order so the listing is deterministic.
func (s *Service) List(ctx context.Context, ownerID uint) ([]models.DM, error) {
	var dms []models.DM
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("followup_date ASC, created_at ASC, id ASC").
		Find(&dms).Error
	if err != nil {
		return nil, fmt.Errorf("list dms: %w", err)
	}
	return dms, nil
}

// Get fetches a single DM scoped to its owner.
func (s *Service) Get(ctx context.Context, ownerID uint, id string) (*models.DM, error) {
	var dm models.DM
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&dm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dm: %w", err)
	}
	return &dm, nil
}

// Update replaces the editable fields of a DM. SentDate and Status are untouched.
func (s *Service) Update(ctx context.Context, ownerID uint, id string, in Input) (*models.DM, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	dm, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":          in.Name,
		"platform":      in.Platform,
		"followup_date": in.FollowupDate,
		"note":          in.Note,
	}
	if err := s.db.WithContext(ctx).Model(dm).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update dm: %w", err)
	}
	return dm, nil
}

// UpdateStatus sets the status unconditionally (the transition graph is flat:
// any state may move to any other by explicit user action). When extendByDays
// is given, the follow-up date becomes now + N calendar days in the owner's
// timezone; due-ness is defined in owner time, so "remind me in 3 days" means
// 3 of the owner's days.
func (s *Service) UpdateStatus(ctx context.Context, ownerID uint, id string, status models.Status, extendByDays *int) (*models.DM, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: "Invalid status"}
	}

	dm, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": status}
	if extendByDays != nil {
		loc, lerr := s.ownerLocation(ctx, ownerID)
		if lerr != nil {
			return nil, lerr
		}
		updates["followup_date"] = s.now().In(loc).AddDate(0, 0, *extendByDays)
	}

	if err := s.db.WithContext(ctx).Model(dm).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update dm status: %w", err)
	}
	return dm, nil
}

// Delete hard-deletes a DM. No tombstone, not recoverable.
func (s *Service) Delete(ctx context.Context, ownerID uint, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.DM{})
	if res.Error != nil {
		return fmt.Errorf("delete dm: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ownerLocation(ctx context.Context, ownerID uint) (*time.Location, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, ownerID).Error; err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}
	loc, err := user.Location()
	if err != nil {
		// Bad stored zone shouldn't block the transition
		return time.UTC, nil
	}
	return loc, nil
}
