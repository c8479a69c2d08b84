package handlers

import (
	"context"

	"github.com/sdko-org/lawchat-api/internal/audit"
	"github.com/sdko-org/lawchat-api/internal/config"
	"github.com/sdko-org/lawchat-api/internal/resolver"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Resolver is the answer pipeline as the HTTP layer sees it.
type Resolver interface {
	Resolve(ctx context.Context, question string) (resolver.Result, error)
}

type Handler struct {
	cfg      *config.Config
	resolver Resolver
	audit    *audit.Logger
	db       *gorm.DB
	log      *logrus.Entry
}

func NewHandler(logger *logrus.Logger, cfg *config.Config, res Resolver, auditLog *audit.Logger, db *gorm.DB) *Handler {
	return &Handler{
		cfg:      cfg,
		resolver: res,
		audit:    auditLog,
		db:       db,
		log:      logger.WithField("component", "http_handler"),
	}
}
