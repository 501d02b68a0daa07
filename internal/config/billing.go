package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// BillingPolicy holds the business knobs of the billing core that operators may
// tune without a redeploy.
type BillingPolicy struct {
	// ClampDueDay moves a recurrence day past the end of a short month to the
	// month's last day. When false the date overflows into the next month.
	ClampDueDay     bool   `mapstructure:"clampDueDay"`
	DefaultDueDay   int    `mapstructure:"defaultDueDay"`
	Timezone        string `mapstructure:"timezone"`
	FinalLeadStage  string `mapstructure:"finalLeadStage"`
	RevenueGoalType string `mapstructure:"revenueGoalType"`
}

func DefaultBillingPolicy() BillingPolicy {
	return BillingPolicy{
		ClampDueDay:     true,
		DefaultDueDay:   1,
		Timezone:        "UTC",
		FinalLeadStage:  "venda_concluida",
		RevenueGoalType: "faturamento",
	}
}

// Location resolves the policy timezone, falling back to UTC.
func (p BillingPolicy) Location() *time.Location {
	name := strings.TrimSpace(p.Timezone)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

type BillingPolicyHolder struct {
	current atomic.Value // holds BillingPolicy
}

// NewStaticBillingPolicy returns a holder that never reloads.
func NewStaticBillingPolicy(policy BillingPolicy) *BillingPolicyHolder {
	holder := &BillingPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func NewBillingPolicyHolder(log *zap.Logger) (*BillingPolicyHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.billing")

	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/gestao")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GESTAO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingPolicy()
	v.SetDefault("billing.clampDueDay", defaults.ClampDueDay)
	v.SetDefault("billing.defaultDueDay", defaults.DefaultDueDay)
	v.SetDefault("billing.timezone", defaults.Timezone)
	v.SetDefault("billing.finalLeadStage", defaults.FinalLeadStage)
	v.SetDefault("billing.revenueGoalType", defaults.RevenueGoalType)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var policy BillingPolicy
	if err := v.UnmarshalKey("billing", &policy); err != nil {
		return nil, err
	}
	if err := validateBillingPolicy(policy); err != nil {
		return nil, err
	}

	holder := NewStaticBillingPolicy(policy)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingPolicy
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Warn("billing policy reload failed", zap.Error(err))
			return
		}
		if err := validateBillingPolicy(updated); err != nil {
			log.Warn("invalid billing policy ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("billing policy reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *BillingPolicyHolder) Get() BillingPolicy {
	if h == nil {
		return DefaultBillingPolicy()
	}
	policy, ok := h.current.Load().(BillingPolicy)
	if !ok {
		return DefaultBillingPolicy()
	}
	return policy
}

func validateBillingPolicy(p BillingPolicy) error {
	if p.DefaultDueDay < 1 || p.DefaultDueDay > 31 {
		return errors.New("billing.defaultDueDay must be between 1 and 31")
	}
	if strings.TrimSpace(p.FinalLeadStage) == "" {
		return errors.New("billing.finalLeadStage cannot be empty")
	}
	if strings.TrimSpace(p.RevenueGoalType) == "" {
		return errors.New("billing.revenueGoalType cannot be empty")
	}
	if _, err := time.LoadLocation(strings.TrimSpace(p.Timezone)); err != nil {
		return errors.New("billing.timezone is not a known location")
	}
	return nil
}
