package handlers

import (
	"party-on-delivery/internal/catalog"
	"party-on-delivery/internal/config"
	"party-on-delivery/internal/payments"
	"party-on-delivery/internal/queue"
	"party-on-delivery/internal/session"
	"party-on-delivery/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *pgxpool.Pool
	Logger   *zap.Logger
	Config   config.Config
	Queue    *queue.Client
	Sessions session.Store
	Payments *payments.Client
	Catalog  *catalog.Client
	Store    *storage.ObjectStore
}
