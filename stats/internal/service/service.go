package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/Astemirdum/lending-service/stats/internal/model"
	statsRepo "github.com/Astemirdum/lending-service/stats/internal/repository"
)

type Service struct {
	log  *zap.Logger
	repo statsRepo.Repository
}

func NewService(repo statsRepo.Repository, log *zap.Logger) *Service {
	return &Service{
		log:  log,
		repo: repo,
	}
}

// GetStats returns aggregates for one actor, or for all when actorID is empty.
func (s *Service) GetStats(ctx context.Context, actorID string) (model.StatsInfo, error) {
	return s.repo.GetStats(ctx, actorID)
}

// Record is used by the kafka consumer.
func (s *Service) Record(ctx context.Context, event kafka.LendingEvent) error {
	if event.ID == "" {
		s.log.Warn("event without id dropped", zap.String("type", string(event.Type)))
		return nil
	}
	return s.repo.Record(ctx, event)
}
