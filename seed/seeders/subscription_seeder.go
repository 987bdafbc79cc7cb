package seeders

import (
	"context"

	"github.com/google/uuid"
	"github.com/lac-hong-legacy/footage_api/model"
	"github.com/lac-hong-legacy/footage_api/services/repositories"
	"github.com/lac-hong-legacy/footage_api/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SubscriptionSeeder struct {
	repo *repositories.DownloadRepository
}

func NewSubscriptionSeeder(db *gorm.DB) *SubscriptionSeeder {
	return &SubscriptionSeeder{repo: repositories.NewDownloadRepository(db)}
}

// One demo account per paid plan. User IDs match the user_id claim of tokens
// minted for local testing.
var seedSubscriptions = []struct {
	UserID    string
	PlanID    string
	AnchorDay int
}{
	{UserID: "demo-standard", PlanID: shared.PlanStandard, AnchorDay: 1},
	{UserID: "demo-pro", PlanID: shared.PlanPro, AnchorDay: 15},
	{UserID: "demo-business", PlanID: shared.PlanBusiness, AnchorDay: 31},
}

func (s *SubscriptionSeeder) SeedSubscriptions() error {
	ctx := context.Background()
	created := 0

	for _, seed := range seedSubscriptions {
		existing, err := s.repo.FindActiveSubscription(ctx, seed.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		sub := &model.Subscription{
			ID:             id.String(),
			UserID:         seed.UserID,
			PlanID:         seed.PlanID,
			Status:         shared.SubscriptionStatusActive,
			CycleAnchorDay: seed.AnchorDay,
		}
		if err := s.repo.SaveSubscription(ctx, sub); err != nil {
			return err
		}
		created++
	}

	log.WithField("created", created).Info("Seeded subscriptions")
	return nil
}
