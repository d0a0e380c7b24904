package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Watches []ServiceWatch `gorm:"foreignKey:SubscriptionEndpoint;constraint:OnDelete:CASCADE"`
}

// ServiceWatch maps a push subscription to one watched service key. The
// service key is the grouping identifier from the event feed (username,
// else circuit id); services themselves live in the upstream OSS and are
// not mirrored here.
type ServiceWatch struct {
	ID                   int64  `gorm:"autoIncrement;primaryKey"`
	SubscriptionEndpoint string `gorm:"index;not null"`
	ServiceKey           string `gorm:"index;size:256;not null"`
}
