package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DepotConfig is the operator-editable depot profile read from depot.yml.
type DepotConfig struct {
	Dealer            DealerProfile
	InterestRate      float64
	LowStockThreshold int64
}

type DealerProfile struct {
	Name      string
	Address   string
	GSTNumber string
	Phone     string
}

// Rate returns the monthly interest percentage as a decimal.
func (c DepotConfig) Rate() decimal.Decimal {
	return decimal.NewFromFloat(c.InterestRate)
}

func DefaultDepotConfig() DepotConfig {
	return DepotConfig{
		Dealer: DealerProfile{
			Name:      "Sri Sai Rythu Depot",
			Address:   "D NO 8-190, Chalivendram, Vaddigunta Kandriga, Naidupeta Md., Tirupati Dt., AP ,524421",
			GSTNumber: "37CZCPM6609Q1ZN",
			Phone:     "9030630081",
		},
		InterestRate:      2,
		LowStockThreshold: 10,
	}
}

type DepotConfigHolder struct {
	current atomic.Value // holds DepotConfig
}

// NewDepotConfigHolder reads depot.yml and keeps it current as the file
// changes. A missing file yields the defaults.
func NewDepotConfigHolder(cfg Config) (*DepotConfigHolder, error) {
	v := viper.New()

	if cfg.DepotConfigPath != "" {
		v.SetConfigFile(cfg.DepotConfigPath)
	} else {
		v.SetConfigName("depot")
		v.SetConfigType("yml")
		v.AddConfigPath("/var/lib/rythudepot/config")
		v.AddConfigPath("/etc/rythudepot")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("DEPOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDepotConfig()
	v.SetDefault("depot.dealer.name", defaults.Dealer.Name)
	v.SetDefault("depot.dealer.address", defaults.Dealer.Address)
	v.SetDefault("depot.dealer.gstNumber", defaults.Dealer.GSTNumber)
	v.SetDefault("depot.dealer.phone", defaults.Dealer.Phone)
	v.SetDefault("depot.interestRate", defaults.InterestRate)
	v.SetDefault("depot.lowStockThreshold", defaults.LowStockThreshold)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		watch = false
	}

	depot := readDepotConfig(v)
	if err := validateDepotConfig(depot); err != nil {
		return nil, err
	}

	holder := &DepotConfigHolder{}
	holder.current.Store(depot)

	if watch {
		v.OnConfigChange(func(e fsnotify.Event) {
			updated := readDepotConfig(v)
			if err := validateDepotConfig(updated); err != nil {
				log.Printf("[depot-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[depot-config] reloaded from %s", e.Name)
		})
		v.WatchConfig()
	}

	return holder, nil
}

func readDepotConfig(v *viper.Viper) DepotConfig {
	return DepotConfig{
		Dealer: DealerProfile{
			Name:      strings.TrimSpace(v.GetString("depot.dealer.name")),
			Address:   strings.TrimSpace(v.GetString("depot.dealer.address")),
			GSTNumber: strings.TrimSpace(v.GetString("depot.dealer.gstNumber")),
			Phone:     strings.TrimSpace(v.GetString("depot.dealer.phone")),
		},
		InterestRate:      v.GetFloat64("depot.interestRate"),
		LowStockThreshold: v.GetInt64("depot.lowStockThreshold"),
	}
}

// NewStaticDepotConfigHolder serves a fixed profile.
func NewStaticDepotConfigHolder(cfg DepotConfig) *DepotConfigHolder {
	holder := &DepotConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *DepotConfigHolder) Get() DepotConfig {
	return h.current.Load().(DepotConfig)
}

func validateDepotConfig(cfg DepotConfig) error {
	if strings.TrimSpace(cfg.Dealer.Name) == "" {
		return errors.New("depot.dealer.name cannot be empty")
	}
	if cfg.InterestRate < 0 {
		return errors.New("depot.interestRate cannot be negative")
	}
	if cfg.LowStockThreshold < 0 {
		return errors.New("depot.lowStockThreshold cannot be negative")
	}
	return nil
}
