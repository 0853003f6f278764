// Command erpctl runs maintenance tasks against the ERP database.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/tair/manufacturing-erp/internal/config"
	"github.com/tair/manufacturing-erp/internal/procurement"
	"github.com/tair/manufacturing-erp/internal/production"
	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/internal/production/usecase/query"
	"github.com/tair/manufacturing-erp/internal/schema"
	"github.com/tair/manufacturing-erp/kafka"
	"github.com/tair/manufacturing-erp/pkg/auth"
	"github.com/tair/manufacturing-erp/pkg/database"
	"github.com/tair/manufacturing-erp/pkg/logger"
)

// session holds what the commands share after Before has run
type session struct {
	cfg *config.Config
	db  *gorm.DB
}

func (s *session) loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	logger.Init("erpctl", true)
	logger.SetLevel(cfg.Log.Level)
	s.cfg = cfg
	return nil
}

func (s *session) openDB(c *cli.Context) error {
	db, err := database.NewGormConnection(s.cfg.Database)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *session) close(c *cli.Context) error {
	return database.Close(s.db)
}

func main() {
	s := &session{}

	app := &cli.App{
		Name:  "erpctl",
		Usage: "Maintenance commands for the manufacturing ERP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a config file",
				EnvVars: []string{"ERP_CONFIG"},
			},
		},
		Before: s.loadConfig,
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create or update every table",
				Before: s.openDB,
				After:  s.close,
				Action: func(c *cli.Context) error {
					if err := schema.Migrate(s.db); err != nil {
						return err
					}
					logger.Logger.Info().Int("models", len(schema.Models())).Msg("Migrations applied")
					return nil
				},
			},
			{
				Name:  "recompute-totals",
				Usage: "Recompute purchase order totals from their lines",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:  "id",
						Usage: "Only recompute this purchase order",
					},
				},
				Before: s.openDB,
				After:  s.close,
				Action: s.recomputeTotals,
			},
			{
				Name:  "availability",
				Usage: "Print the stock position of a material",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:     "material",
						Usage:    "Material ID",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  "required",
						Usage: "Quantity to check against available stock",
					},
				},
				Before: s.openDB,
				After:  s.close,
				Action: s.availability,
			},
			{
				Name:  "token",
				Usage: "Sign a development access token with the configured secret",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Value: "dev"},
					&cli.StringFlag{Name: "role", Value: auth.RoleViewer},
					&cli.UintFlag{Name: "user-id", Value: 1},
					&cli.DurationFlag{Name: "ttl", Value: time.Hour},
				},
				Action: s.token,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "erpctl:", err)
		os.Exit(1)
	}
}

func (s *session) recomputeTotals(c *cli.Context) error {
	var publisher *kafka.Publisher
	if s.cfg.Kafka.Enabled {
		var err error
		if publisher, err = kafka.NewPublisher(s.cfg.Kafka.Brokers); err != nil {
			return err
		}
		defer publisher.Close()
	}

	handler, err := procurement.InitializeRecomputeTotalHandler(s.db, database.NewTxManager(s.db), publisher, nil)
	if err != nil {
		return err
	}

	if c.IsSet("id") {
		id := c.Uint("id")
		if !handler.Handle(c.Context, id) {
			return cli.Exit(fmt.Sprintf("purchase order %d was not recomputed", id), 1)
		}
		return nil
	}

	written, err := handler.RecomputeAll(c.Context)
	if err != nil {
		return err
	}
	logger.Logger.Info().Int("purchase_orders", written).Msg("Totals recomputed")
	return nil
}

func (s *session) availability(c *cli.Context) error {
	policy := domain.DemandPolicy{IncludeActiveOrders: s.cfg.Planning.IncludeActiveOrders}
	handler, err := production.InitializeAvailabilityHandler(s.db, policy, nil)
	if err != nil {
		return err
	}

	result, err := handler.Handle(c.Context, query.MaterialAvailabilityQuery{
		MaterialID:       c.Uint("material"),
		RequiredQuantity: c.Float64("required"),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func (s *session) token(c *cli.Context) error {
	if s.cfg.Auth.Secret == "" {
		return cli.Exit("auth.secret is not configured", 1)
	}
	role := c.String("role")
	switch role {
	case auth.RoleAdmin, auth.RolePlanner, auth.RolePurchaser, auth.RoleInspector, auth.RoleViewer:
	default:
		return cli.Exit(fmt.Sprintf("unknown role %q", role), 1)
	}

	token, err := auth.NewValidator(s.cfg.Auth.Secret, s.cfg.Auth.Issuer).
		GenerateToken(c.Uint("user-id"), c.String("username"), role, c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}
