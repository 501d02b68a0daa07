package subscriptiongate

import (
	"context"

	"github.com/smallbiznis/gestao/internal/clock"
	"github.com/smallbiznis/gestao/internal/config"
	"github.com/smallbiznis/gestao/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("subscriptiongate",
	fx.Provide(NewFromConfig),
	fx.Invoke(runRefresher),
)

type Params struct {
	fx.In

	Config  config.Config
	Clock   clock.Clock
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

func NewFromConfig(p Params) *Gate {
	sub := p.Config.Subscription
	enabled := sub.Enabled
	if enabled && sub.CheckURL == "" {
		p.Log.Warn("subscription gate disabled: SUBSCRIPTION_CHECK_URL is empty")
		enabled = false
	}
	return NewGate(Options{
		Enabled:  enabled,
		Interval: sub.CheckInterval,
		Checker:  NewHTTPChecker(sub.CheckURL, nil),
		Clock:    p.Clock,
		Log:      p.Log,
		Metrics:  p.Metrics,
	})
}

func runRefresher(lc fx.Lifecycle, gate *Gate) {
	if !gate.Enabled() {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go gate.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
