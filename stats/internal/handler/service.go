package handler

import (
	"context"

	"github.com/Astemirdum/lending-service/pkg/kafka"
	statsModel "github.com/Astemirdum/lending-service/stats/internal/model"
	"github.com/Astemirdum/lending-service/stats/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type StatsService interface {
	GetStats(ctx context.Context, actorID string) (statsModel.StatsInfo, error)
	Record(ctx context.Context, event kafka.LendingEvent) error
}

var _ StatsService = (*service.Service)(nil)
