package billingreport

import (
	"github.com/smallbiznis/gestao/internal/billingreport/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billingreport.service",
	fx.Provide(service.New),
)
