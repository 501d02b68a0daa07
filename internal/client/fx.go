package client

import (
	"github.com/smallbiznis/gestao/internal/client/repository"
	"github.com/smallbiznis/gestao/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
