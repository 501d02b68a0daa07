package goal

import (
	"github.com/smallbiznis/gestao/internal/goal/domain"
	"github.com/smallbiznis/gestao/internal/goal/service"
	"github.com/smallbiznis/gestao/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("goal.service",
	fx.Provide(repository.ProvideStore[domain.Goal]),
	fx.Provide(service.New),
)
