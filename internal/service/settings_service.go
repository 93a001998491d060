package service

import (
	"context"
	"errors"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/repository"
)

// --- Error Definitions ---
var (
	ErrSettingsInvalid = errors.New("settings require a upi id and a positive amount")
)

// SettingsService defines the interface for admin-managed configuration.
type SettingsService interface {
	GetPaymentSettings(ctx context.Context) (*domain.Settings, error)
	UpdatePaymentSettings(ctx context.Context, upiID string, amount float64, currency string) (*domain.Settings, error)
}

// --- Service Implementation ---

type settingsService struct {
	settingsRepo    repository.SettingsRepository
	defaultAmount   float64
	defaultCurrency string
}

// NewSettingsService creates a new instance of settingsService.
func NewSettingsService(settingsRepo repository.SettingsRepository, defaultAmount float64, defaultCurrency string) SettingsService {
	return &settingsService{
		settingsRepo:    settingsRepo,
		defaultAmount:   defaultAmount,
		defaultCurrency: defaultCurrency,
	}
}

func (s *settingsService) GetPaymentSettings(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.settingsRepo.GetByType(ctx, domain.SettingsTypePayment)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return &domain.Settings{
		Type:     domain.SettingsTypePayment,
		Amount:   s.defaultAmount,
		Currency: s.defaultCurrency,
	}, nil
}

func (s *settingsService) UpdatePaymentSettings(ctx context.Context, upiID string, amount float64, currency string) (*domain.Settings, error) {
	if upiID == "" || amount <= 0 {
		return nil, ErrSettingsInvalid
	}
	if currency == "" {
		currency = s.defaultCurrency
	}
	return s.settingsRepo.Upsert(ctx, &domain.Settings{
		Type:     domain.SettingsTypePayment,
		UPIID:    upiID,
		Amount:   amount,
		Currency: currency,
	})
}
