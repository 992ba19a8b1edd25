package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PayoutPolicy is the operator-tunable part of payout reconciliation.
// Amounts are integer minor units (kobo), fees are basis points.
type PayoutPolicy struct {
	CooldownDays  int   `mapstructure:"cooldownDays"`
	DefaultFeeBps int64 `mapstructure:"defaultFeeBps"`
	MinNetAmount  int64 `mapstructure:"minNetAmount"`
}

func DefaultPayoutPolicy() PayoutPolicy {
	return PayoutPolicy{
		CooldownDays:  14,
		DefaultFeeBps: 500,
		MinNetAmount:  0,
	}
}

// Cooldown returns the minimum interval between payout requests.
func (p PayoutPolicy) Cooldown() time.Duration {
	return time.Duration(p.CooldownDays) * 24 * time.Hour
}

// PayoutPolicyHolder serves the current policy and hot-reloads it when the
// mounted config file changes. Reads are lock-free.
type PayoutPolicyHolder struct {
	current atomic.Value // holds PayoutPolicy
}

func NewPayoutPolicyHolder() (*PayoutPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("payout")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/ticketpay/config")
	v.AddConfigPath("/etc/ticketpay")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TICKETPAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPayoutPolicy()
	v.SetDefault("payout.cooldownDays", defaults.CooldownDays)
	v.SetDefault("payout.defaultFeeBps", defaults.DefaultFeeBps)
	v.SetDefault("payout.minNetAmount", defaults.MinNetAmount)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg PayoutPolicy
	if err := v.UnmarshalKey("payout", &cfg); err != nil {
		return nil, err
	}
	if err := validatePayoutPolicy(cfg); err != nil {
		return nil, err
	}

	holder := &PayoutPolicyHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PayoutPolicy
		if err := v.UnmarshalKey("payout", &updated); err != nil {
			log.Printf("[payout-policy] reload failed: %v", err)
			return
		}
		if err := validatePayoutPolicy(updated); err != nil {
			log.Printf("[payout-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[payout-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PayoutPolicyHolder) Get() PayoutPolicy {
	return h.current.Load().(PayoutPolicy)
}

// NewStaticPolicyHolder returns a holder pinned to the given policy. Tests
// use it to exercise cooldown and fee behaviour without a config file.
func NewStaticPolicyHolder(p PayoutPolicy) *PayoutPolicyHolder {
	holder := &PayoutPolicyHolder{}
	holder.current.Store(p)
	return holder
}

func validatePayoutPolicy(cfg PayoutPolicy) error {
	if cfg.CooldownDays < 0 {
		return errors.New("payout.cooldownDays cannot be negative")
	}
	if cfg.DefaultFeeBps < 0 || cfg.DefaultFeeBps > 10_000 {
		return errors.New("payout.defaultFeeBps must be between 0 and 10000")
	}
	if cfg.MinNetAmount < 0 {
		return errors.New("payout.minNetAmount cannot be negative")
	}
	return nil
}
