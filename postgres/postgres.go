package postgres

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgtype"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/xybotsu/coinpit"
)

type Config struct {
	Address      string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MigrationDir string
}

func (c *Config) connectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Address,
		c.Name,
		c.SSLMode,
	)
}

type Client struct {
	mutex    sync.RWMutex
	database *sqlx.DB
}

func NewClient(
	ctx context.Context,
	logger coinpit.Logger,
	config *Config,
) (*Client, error) {
	database, err := connectDatabase(config)
	if err != nil {
		return nil, err
	}

	client := &Client{database: database}

	go client.monitorDatabaseMode(ctx, logger, config)

	return client, nil
}

func connectDatabase(config *Config) (*sqlx.DB, error) {
	database, err := sqlx.Connect("pgx", config.connectionString())
	if err != nil {
		return nil, fmt.Errorf("could not connect database: [%v]", err)
	}

	return database, nil
}

// monitorDatabaseMode detects a failover to a read-only replica and
// reconnects to the promoted master.
func (c *Client) monitorDatabaseMode(
	ctx context.Context,
	logger coinpit.Logger,
	config *Config,
) {
	ticker := time.NewTicker(1 * time.Minute)

	for {
		select {
		case <-ticker.C:
			var isReadonly bool
			err := c.database.Get(&isReadonly, "SELECT pg_is_in_recovery()")
			if err != nil {
				logger.Errorf(
					"could not determine database mode: [%v]",
					err,
				)
				continue
			}

			if isReadonly {
				logger.Infof(
					"database instance demoted to read-only mode; " +
						"reconnecting master database",
				)

				newDatabase, err := connectDatabase(config)
				if err != nil {
					logger.Errorf(
						"could not reconnect master database: [%v]",
						err,
					)
					continue
				}

				c.mutex.Lock()
				_ = c.database.Close()
				c.database = newDatabase
				c.mutex.Unlock()

				logger.Infof("reconnected master database")
			}
		case <-ctx.Done():
			_ = c.database.Close()
			return
		}
	}
}

func (c *Client) instance() *sqlx.DB {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.database
}

func RunMigration(logger coinpit.Logger, config *Config) error {
	if len(config.MigrationDir) == 0 {
		logger.Infof("postgres migration disabled")
		return nil
	}

	logger.Infof("starting postgres migration")

	migration, err := migrate.New(
		"file://"+config.MigrationDir,
		config.connectionString(),
	)
	if err != nil {
		return err
	}

	err = migration.Up()
	if err != nil {
		if err == migrate.ErrNoChange {
			logger.Infof("postgres migration skipped as there are no changes")
			return nil
		}

		return err
	}

	logger.Infof("postgres migration performed successfully")

	return nil
}

func floatToNumeric(value *big.Float) (pgtype.Numeric, error) {
	var result pgtype.Numeric
	valueFloat, _ := value.Float64()

	if err := result.Set(valueFloat); err != nil {
		return pgtype.Numeric{}, err
	}

	return result, nil
}

func numericToFloat(value pgtype.Numeric) (*big.Float, error) {
	var result float64

	if err := value.AssignTo(&result); err != nil {
		return nil, err
	}

	return big.NewFloat(result), nil
}
