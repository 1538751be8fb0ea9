package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/linkvault/internal/logger"
)

// CategorySeeder is satisfied by the SQL store.
type CategorySeeder interface {
	SeedDefaults(ctx context.Context) (int, error)
}

// Seeder inserts the default categories once at startup
type Seeder struct {
	store  CategorySeeder
	logger logger.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(store CategorySeeder, log logger.Logger) *Seeder {
	return &Seeder{
		store:  store,
		logger: log,
	}
}

// Seed inserts missing default categories
func (s *Seeder) Seed(ctx context.Context) error {
	s.logger.Info("seeding default categories")

	n, err := s.store.SeedDefaults(ctx)
	if err != nil {
		return err
	}

	if n == 0 {
		s.logger.Info("default categories already present")
		return nil
	}

	s.logger.Info("seeded default categories",
		logger.Int("count", n))

	return nil
}
