// Package database is the gorm-backed persistence layer. It supports
// PostgreSQL and MySQL primaries with optional read replicas.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"time"

	"students/config"
	"students/internal/domain/lifecycle"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	dbPoolMonitorInterval       = 5 * time.Second
	dbPoolWarnDurationThreshold = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the primary (and replicas), pings on start and closes on stop.
// With database.autoMigrate set, pending migrations run before the ping returns.
func New(params Params) (*gorm.DB, error) {
	db, err := Open(params.Config, params.Logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sql.DB")
	}

	dbCfg := params.Config.Database
	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrapf(err, "failed to ping %s", dbCfg.Driver)
			}

			if dbCfg.AutoMigrate {
				migrator, err := NewMigrator(sqlDB, dbCfg.Driver)
				if err != nil {
					return err
				}
				if err := migrator.Up(ctx); err != nil {
					return err
				}
				params.Logger.Info("Database migrations applied", slog.String("driver", dbCfg.Driver))
			}

			go monitorDBPool(monitorCtx, params.Logger, sqlDB, dbPoolMonitorInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return sqlDB.Close()
		},
	})

	return db, nil
}

// Open connects to the configured primary and registers read replicas.
// It does not ping; callers outside fx (the migrate CLI) ping themselves.
func Open(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	dbCfg := cfg.Database
	if dbCfg == nil {
		return nil, errors.New("database configuration is missing")
	}

	primary, err := dialector(dbCfg, config.ConnectionConfig{
		Host:     dbCfg.Host,
		Port:     dbCfg.Port,
		UserName: dbCfg.UserName,
		Password: dbCfg.Password,
	})
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(primary, &gorm.Config{
		// Every repository call is a single statement.
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(logger, cfg),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s connection", dbCfg.Driver)
	}

	if len(dbCfg.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(dbCfg.Replicas))
		for _, replica := range dbCfg.Replicas {
			d, err := dialector(dbCfg, replica)
			if err != nil {
				return nil, err
			}
			replicas = append(replicas, d)
		}

		resolver := dbresolver.Register(dbresolver.Config{
			Replicas:          replicas,
			Policy:            dbresolver.RandomPolicy{},
			TraceResolverMode: cfg.Env.Debug,
		})
		applyResolverPool(resolver, dbCfg)

		if err := db.Use(resolver); err != nil {
			return nil, errors.Wrap(err, "failed to register read replicas")
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sql.DB")
	}
	applyPool(sqlDB, dbCfg)

	return db, nil
}

func dialector(dbCfg *config.DatabaseConfig, conn config.ConnectionConfig) (gorm.Dialector, error) {
	switch dbCfg.Driver {
	case DriverPostgres:
		return gormpostgres.Open(postgresDSN(dbCfg, conn)), nil
	case DriverMySQL:
		return gormmysql.Open(mysqlDSN(dbCfg, conn)), nil
	default:
		return nil, errors.Errorf("unsupported database driver %q", dbCfg.Driver)
	}
}

func postgresDSN(dbCfg *config.DatabaseConfig, conn config.ConnectionConfig) string {
	sslMode := dbCfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		conn.Host, conn.Port, conn.UserName, conn.Password, dbCfg.Name, sslMode)
}

func mysqlDSN(dbCfg *config.DatabaseConfig, conn config.ConnectionConfig) string {
	mysqlCfg := mysql.NewConfig()
	mysqlCfg.User = conn.UserName
	mysqlCfg.Passwd = conn.Password
	mysqlCfg.Net = "tcp"
	mysqlCfg.Addr = net.JoinHostPort(conn.Host, conn.Port)
	mysqlCfg.DBName = dbCfg.Name
	mysqlCfg.ParseTime = true
	mysqlCfg.Loc = time.UTC
	// RowsAffected counts matched rows, so an update that changes nothing is not "not found".
	mysqlCfg.ClientFoundRows = true

	return mysqlCfg.FormatDSN()
}

func applyPool(sqlDB *sql.DB, dbCfg *config.DatabaseConfig) {
	if dbCfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
	}
	if dbCfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
	}
	if dbCfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)
	}
}

func applyResolverPool(resolver *dbresolver.DBResolver, dbCfg *config.DatabaseConfig) {
	if dbCfg.MaxOpenConns > 0 {
		resolver.SetMaxOpenConns(dbCfg.MaxOpenConns)
	}
	if dbCfg.MaxIdleConns > 0 {
		resolver.SetMaxIdleConns(dbCfg.MaxIdleConns)
	}
	if dbCfg.ConnMaxLifetime > 0 {
		resolver.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)
	}
}

func monitorDBPool(ctx context.Context, logger *slog.Logger, sqlDB *sql.DB, interval time.Duration) {
	if logger == nil || sqlDB == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			waitDelta := cur.WaitCount - prev.WaitCount
			waitDurationDelta := cur.WaitDuration - prev.WaitDuration
			prev = cur

			if waitDelta <= 0 {
				continue
			}

			level := slog.LevelDebug
			if waitDurationDelta >= dbPoolWarnDurationThreshold {
				level = slog.LevelWarn
			}

			logger.LogAttrs(ctx, level, "Database pool wait",
				slog.Int64("waitCountDelta", waitDelta),
				slog.Duration("waitDurationDelta", waitDurationDelta),
				slog.Int("maxOpenConns", cur.MaxOpenConnections),
				slog.Int("openConns", cur.OpenConnections),
				slog.Int("inUseConns", cur.InUse),
				slog.Int("idleConns", cur.Idle),
			)
		}
	}
}
