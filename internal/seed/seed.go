// Package seed fills an empty depot with opening data on startup.
package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rythudepot/internal/clock"
	"github.com/smallbiznis/rythudepot/internal/config"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Data is the opening content of the seedable collections.
type Data struct {
	Farmers       []domain.Farmer
	Products      []domain.Product
	StockRegister []domain.StockRegisterEntry
}

// Result reports which collections were filled.
type Result struct {
	Farmers       int
	Products      int
	StockRegister int
	Settings      bool
}

// Apply writes data into every collection that is still empty and takes the
// dealer profile and interest rate from the depot config when settings have
// never been saved. Collections that already hold records are left alone,
// so running it again is a no-op.
func Apply(ctx context.Context, repo domain.Repository, data Data, depot config.DepotConfig) (Result, error) {
	uow := repo.Begin(ctx)
	var res Result

	farmers, err := uow.Farmers(ctx)
	if err != nil {
		return res, err
	}
	if len(farmers) == 0 && len(data.Farmers) > 0 {
		uow.SetFarmers(data.Farmers)
		res.Farmers = len(data.Farmers)
	}

	products, err := uow.Products(ctx)
	if err != nil {
		return res, err
	}
	if len(products) == 0 && len(data.Products) > 0 {
		uow.SetProducts(data.Products)
		res.Products = len(data.Products)
	}

	register, err := uow.StockRegister(ctx)
	if err != nil {
		return res, err
	}
	if len(register) == 0 && len(data.StockRegister) > 0 {
		uow.SetStockRegister(data.StockRegister)
		res.StockRegister = len(data.StockRegister)
	}

	settings, err := uow.Settings(ctx)
	if err != nil {
		return res, err
	}
	if settings.DealerName == "" {
		settings.DealerName = depot.Dealer.Name
		settings.Address = depot.Dealer.Address
		settings.GSTNumber = depot.Dealer.GSTNumber
		settings.Phone = depot.Dealer.Phone
		settings.InterestRate = depot.Rate()
		uow.SetSettings(settings)
		res.Settings = true
	}

	if err := uow.Commit(ctx); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Load returns the built-in defaults, with any sheet present in the
// workbook at path taking the place of its default collection.
func Load(path string, node *snowflake.Node, c clock.Clock) (Data, error) {
	data := Defaults(node)
	if path == "" {
		return data, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Data{}, fmt.Errorf("open seed workbook: %w", err)
	}
	defer f.Close()

	book, err := ReadWorkbook(f, node, c.Now())
	if err != nil {
		return Data{}, err
	}
	if book.Farmers != nil {
		data.Farmers = book.Farmers
	}
	if book.Products != nil {
		data.Products = book.Products
	}
	if book.StockRegister != nil {
		data.StockRegister = book.StockRegister
	}
	return data, nil
}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Depot     *config.DepotConfigHolder
	Repo      domain.Repository
	GenID     *snowflake.Node
	Clock     clock.Clock
	Log       *zap.Logger
}

var Module = fx.Module("seed",
	fx.Invoke(Register),
)

// Register seeds the depot when the application starts.
func Register(p Params) {
	log := p.Log.Named("seed")
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			data, err := Load(p.Config.SeedWorkbook, p.GenID, p.Clock)
			if err != nil {
				return err
			}
			res, err := Apply(ctx, p.Repo, data, p.Depot.Get())
			if err != nil {
				return fmt.Errorf("seed depot: %w", err)
			}
			log.Info("seed applied",
				zap.String("workbook", p.Config.SeedWorkbook),
				zap.Int("farmers", res.Farmers),
				zap.Int("products", res.Products),
				zap.Int("stock_register", res.StockRegister),
				zap.Bool("settings", res.Settings),
			)
			return nil
		},
	})
}
