package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProgressNotFound = errors.New("progress entry not found")
	ErrProgressEmpty    = errors.New("progress entry needs a weight, measurement or photo")
)

// ProgressInput carries one body measurement sample.
type ProgressInput struct {
	Date         time.Time
	Weight       float64
	Measurements domain.Measurements
	Photos       []domain.ProgressPhoto
}

// ProgressService defines the interface for body measurement tracking and
// per-day completion logs.
type ProgressService interface {
	// AddEntry records a measurement sample and mirrors the weight onto the
	// user profile so BMI stays current.
	AddEntry(ctx context.Context, userID primitive.ObjectID, input ProgressInput) (*domain.Progress, error)
	GetHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.Progress, error)
	GetLatest(ctx context.Context, userID primitive.ObjectID) (*domain.Progress, error)
	SetFeedback(ctx context.Context, progressID primitive.ObjectID, feedback string) error

	UpdateDailyLog(ctx context.Context, userID primitive.ObjectID, day time.Time, patch repository.DailyLogPatch) (*domain.DailyLog, error)
	GetDailyLog(ctx context.Context, userID primitive.ObjectID, day time.Time) (*domain.DailyLog, error)
}

// --- Service Implementation ---

type progressService struct {
	progressRepo repository.ProgressRepository
	dailyLogRepo repository.DailyLogRepository
	userRepo     repository.UserRepository
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	progressRepo repository.ProgressRepository,
	dailyLogRepo repository.DailyLogRepository,
	userRepo repository.UserRepository,
) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		dailyLogRepo: dailyLogRepo,
		userRepo:     userRepo,
	}
}

func (s *progressService) AddEntry(ctx context.Context, userID primitive.ObjectID, input ProgressInput) (*domain.Progress, error) {
	if input.Weight <= 0 && input.Measurements == (domain.Measurements{}) && len(input.Photos) == 0 {
		return nil, ErrProgressEmpty
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	entry := &domain.Progress{
		UserID:       userID,
		Date:         date,
		Weight:       input.Weight,
		Measurements: input.Measurements,
		Photos:       input.Photos,
	}
	id, err := s.progressRepo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = id

	if input.Weight > 0 {
		if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
			user.CurrentWeight = input.Weight
			// Best effort; the sample itself is already saved.
			_ = s.userRepo.Update(ctx, user)
		}
	}
	return entry, nil
}

func (s *progressService) GetHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.Progress, error) {
	entries, err := s.progressRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.Progress{}
	}
	return entries, nil
}

func (s *progressService) GetLatest(ctx context.Context, userID primitive.ObjectID) (*domain.Progress, error) {
	entry, err := s.progressRepo.GetLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *progressService) SetFeedback(ctx context.Context, progressID primitive.ObjectID, feedback string) error {
	err := s.progressRepo.SetFeedback(ctx, progressID, feedback)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProgressNotFound
	}
	return err
}

func (s *progressService) UpdateDailyLog(ctx context.Context, userID primitive.ObjectID, day time.Time, patch repository.DailyLogPatch) (*domain.DailyLog, error) {
	return s.dailyLogRepo.UpsertByDay(ctx, userID, day, patch)
}

func (s *progressService) GetDailyLog(ctx context.Context, userID primitive.ObjectID, day time.Time) (*domain.DailyLog, error) {
	log, err := s.dailyLogRepo.GetByDay(ctx, userID, day)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// An absent log is an all-false day, not an error.
			return &domain.DailyLog{UserID: userID, Date: dayStartUTC(day)}, nil
		}
		return nil, err
	}
	return log, nil
}
