package seeders

import (
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

func (s *MainSeeder) SeedAll() error {
	log.Info("Starting database seeding...")

	if err := NewVideoSeeder(s.db).SeedVideos(); err != nil {
		log.WithError(err).Error("Video seeding failed")
		return err
	}

	if err := NewSubscriptionSeeder(s.db).SeedSubscriptions(); err != nil {
		log.WithError(err).Error("Subscription seeding failed")
		return err
	}

	log.Info("Database seeding completed successfully")
	return nil
}

func (s *MainSeeder) SeedVideosOnly() error {
	return NewVideoSeeder(s.db).SeedVideos()
}

func (s *MainSeeder) SeedSubscriptionsOnly() error {
	return NewSubscriptionSeeder(s.db).SeedSubscriptions()
}
