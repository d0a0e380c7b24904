package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"subscriber-activity-backend/internal/model"
)

// Store defines the interface for subscription persistence. Computed
// timelines are deliberately not stored; they are recomputed on every poll.
type Store interface {
	DB() *gorm.DB
	SaveSubscription(ctx context.Context, sub model.PushSubscription, serviceKeys []string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscribersForService(ctx context.Context, serviceKey string) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for callers that need it directly.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// SaveSubscription upserts a subscription and replaces its watch list.
func (s *gormStore) SaveSubscription(ctx context.Context, sub model.PushSubscription, serviceKeys []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		if err := tx.Where("subscription_endpoint = ?", sub.Endpoint).
			Delete(&model.ServiceWatch{}).Error; err != nil {
			return fmt.Errorf("failed to clear watch list: %w", err)
		}

		if len(serviceKeys) == 0 {
			return nil
		}

		watches := make([]model.ServiceWatch, 0, len(serviceKeys))
		for _, key := range serviceKeys {
			watches = append(watches, model.ServiceWatch{
				SubscriptionEndpoint: sub.Endpoint,
				ServiceKey:           key,
			})
		}
		if err := tx.Create(&watches).Error; err != nil {
			return fmt.Errorf("failed to save watch list: %w", err)
		}
		return nil
	})
}

// GetSubscription fetches one subscription with its watch list preloaded.
func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Watches").
		First(&sub, "endpoint = ?", endpoint).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeleteSubscription removes a subscription and its watches.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("subscription_endpoint = ?", endpoint).
			Delete(&model.ServiceWatch{}).Error; err != nil {
			return fmt.Errorf("failed to delete watches: %w", err)
		}
		if err := tx.Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return nil
	})
}

// SubscribersForService returns every subscription watching the given key.
func (s *gormStore) SubscribersForService(ctx context.Context, serviceKey string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN service_watches sw ON sw.subscription_endpoint = push_subscriptions.endpoint").
		Where("sw.service_key = ?", serviceKey).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
