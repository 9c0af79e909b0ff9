package main

import (
	"fmt"
	"log"
	"os"

	"github.com/coney-counter/coney-counter-api/internal/caching"
	"github.com/coney-counter/coney-counter-api/internal/config"
	"github.com/coney-counter/coney-counter-api/internal/database"
	"github.com/coney-counter/coney-counter-api/internal/logging"
	"github.com/coney-counter/coney-counter-api/internal/notifier"
	"github.com/coney-counter/coney-counter-api/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "coneyctl",
		Usage: "maintenance tasks for the Coney Counter API",
		Commands: []*cli.Command{
			commandMigrate(),
			commandRecalculate(),
			commandWarm(),
			commandCron(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// deps holds what every command needs.
type deps struct {
	cfg      *config.Config
	logger   *logrus.Logger
	db       *gorm.DB
	redis    redis.UniversalClient
	boards   *services.LeaderboardService
	progress *services.ProgressService
}

func setup(c *cli.Context) (*deps, error) {
	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogLevel)
	db := database.Connect(cfg)

	redisClient, err := database.ConnectRedis(c.Context, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	// Without redis there is no shared cache to refresh or invalidate.
	var cache caching.Cache
	if redisClient != nil {
		cache = caching.NewCacheRedis(redisClient, false)
	}
	boards := services.NewLeaderboardService(db, cache, cfg.LeaderboardCacheTTL, cfg.LeaderboardLimit, logger)

	var n notifier.Notifier = notifier.Noop{}
	if c.Bool("notify") {
		discord, err := notifier.NewDiscordNotifier(cfg)
		if err != nil {
			return nil, err
		}
		n = discord
	}

	return &deps{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		redis:    redisClient,
		boards:   boards,
		progress: services.NewProgressService(db, n, boards, logger),
	}, nil
}

func (d *deps) close() {
	if d.redis != nil {
		d.redis.Close()
	}
	if sqlDB, err := d.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func commandMigrate() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create or update database tables",
		Action: func(c *cli.Context) error {
			// Connect migrates on open.
			d, err := setup(c)
			if err != nil {
				return err
			}
			defer d.close()
			d.logger.Info("Database migrated")
			return nil
		},
	}
}

func commandRecalculate() *cli.Command {
	return &cli.Command{
		Name:  "recalculate",
		Usage: "re-evaluate achievements and levels",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "user", Usage: "only this user id"},
			&cli.BoolFlag{Name: "notify", Usage: "announce new unlocks on Discord"},
		},
		Action: func(c *cli.Context) error {
			d, err := setup(c)
			if err != nil {
				return err
			}
			defer d.close()

			if id := c.Uint("user"); id != 0 {
				unlocked, err := d.progress.ResyncUser(c.Context, id)
				if err != nil {
					return err
				}
				level, err := d.progress.RecalculateLevel(c.Context, id)
				if err != nil {
					return err
				}
				d.logger.WithFields(logrus.Fields{"user": id, "unlocked": len(unlocked), "level": level.Level}).Info("User recalculated")
				return nil
			}

			total, err := d.progress.RecalculateAll(c.Context)
			if err != nil {
				return err
			}
			d.logger.WithField("unlocked", total).Info("All users recalculated")
			return nil
		},
	}
}

func commandWarm() *cli.Command {
	return &cli.Command{
		Name:  "warm",
		Usage: "recompute and cache the leaderboards",
		Action: func(c *cli.Context) error {
			d, err := setup(c)
			if err != nil {
				return err
			}
			defer d.close()
			return d.boards.Warm(c.Context)
		},
	}
}

func commandCron() *cli.Command {
	return &cli.Command{
		Name:  "cron",
		Usage: "run scheduled jobs until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "warm-schedule", Value: "@every 5m"},
			&cli.StringFlag{Name: "recalculate-schedule", Value: "0 4 * * *"},
			&cli.BoolFlag{Name: "notify", Usage: "announce new unlocks on Discord"},
		},
		Action: func(c *cli.Context) error {
			d, err := setup(c)
			if err != nil {
				return err
			}
			defer d.close()
			return runCron(c.Context, d, c.String("warm-schedule"), c.String("recalculate-schedule"))
		},
	}
}
