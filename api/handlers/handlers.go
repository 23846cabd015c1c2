package handlers

import (
	"github.com/hazemkhaled/text-extractor/internal/service/extraction"
	"github.com/hazemkhaled/text-extractor/pkg/logger"
	"github.com/hazemkhaled/text-extractor/pkg/worker"
)

type Handlers struct {
	Extract *ExtractHandler
	Health  *HealthHandler
}

func NewHandlers(
	service extraction.Service,
	pool *worker.Pool,
	defaultNotify string,
	health HealthInfo,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Extract: NewExtractHandler(service, pool, defaultNotify, log),
		Health:  NewHealthHandler(health),
	}
}
