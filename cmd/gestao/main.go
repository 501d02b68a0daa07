package main

import (
	"github.com/smallbiznis/gestao/internal/auth"
	"github.com/smallbiznis/gestao/internal/billing"
	"github.com/smallbiznis/gestao/internal/billingreport"
	"github.com/smallbiznis/gestao/internal/client"
	"github.com/smallbiznis/gestao/internal/clock"
	"github.com/smallbiznis/gestao/internal/config"
	"github.com/smallbiznis/gestao/internal/goal"
	"github.com/smallbiznis/gestao/internal/lead"
	"github.com/smallbiznis/gestao/internal/lock"
	"github.com/smallbiznis/gestao/internal/logger"
	"github.com/smallbiznis/gestao/internal/migration"
	"github.com/smallbiznis/gestao/internal/observability/metrics"
	"github.com/smallbiznis/gestao/internal/server"
	"github.com/smallbiznis/gestao/internal/subscriptiongate"
	"github.com/smallbiznis/gestao/pkg/db"
	"github.com/smallbiznis/gestao/pkg/validation"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		logger.Module,
		metrics.Module,
		db.Module,
		clock.Module,
		validation.Module,
		lock.Module,
		auth.Module,
		migration.Module,

		// Functional Domains
		client.Module,
		billing.Module,
		lead.Module,
		goal.Module,
		billingreport.Module,
		subscriptiongate.Module,

		server.Module,
	)
	app.Run()
}
