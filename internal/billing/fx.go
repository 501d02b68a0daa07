package billing

import (
	"github.com/smallbiznis/gestao/internal/billing/repository"
	"github.com/smallbiznis/gestao/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
