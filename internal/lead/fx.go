package lead

import (
	"github.com/smallbiznis/gestao/internal/lead/domain"
	"github.com/smallbiznis/gestao/internal/lead/service"
	"github.com/smallbiznis/gestao/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("lead.service",
	fx.Provide(repository.ProvideStore[domain.Lead]),
	fx.Provide(service.New),
)
