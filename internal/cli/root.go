package cli

import (
	"errors"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/maintenance"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/onboarding"
)

// Opener connects to the database behind dsn.
type Opener func(dsn string) (*gorm.DB, error)

// DraftOpener connects to the onboarding snapshot store behind redisAddr. The
// returned func releases the connection.
type DraftOpener func(redisAddr string) (maintenance.DraftSnapshots, func(), error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DSN       string
	RedisAddr string
	DryRun    bool

	open   Opener
	drafts DraftOpener
	db     *gorm.DB
}

// DB opens the database on first use.
func (o *RootOptions) DB() (*gorm.DB, error) {
	if o.db != nil {
		return o.db, nil
	}
	if o.DSN == "" {
		return nil, errors.New("database DSN is required (--dsn or DB_DSN)")
	}
	gdb, err := o.open(o.DSN)
	if err != nil {
		return nil, err
	}
	o.db = gdb
	return gdb, nil
}

// Drafts opens the onboarding snapshot store.
func (o *RootOptions) Drafts() (maintenance.DraftSnapshots, func(), error) {
	if o.RedisAddr == "" {
		return nil, nil, errors.New("redis address is required (--redis-addr or REDIS_ADDR)")
	}
	return o.drafts(o.RedisAddr)
}

func openRedisDrafts(addr string) (maintenance.DraftSnapshots, func(), error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return onboarding.NewRedisDraftStore(rdb, 0), func() { _ = rdb.Close() }, nil
}

// NewRootCommand creates the root command of the maintenance tool. A nil
// drafts opener connects to Redis.
func NewRootCommand(open Opener, drafts DraftOpener) *cobra.Command {
	if drafts == nil {
		drafts = openRedisDrafts
	}
	opts := &RootOptions{open: open, drafts: drafts}

	cmd := &cobra.Command{
		Use:           "dbtool",
		Short:         "Joki marketplace database maintenance",
		Long:          "Migrations, catalog seeding and cleanup chores for the marketplace database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", os.Getenv("DB_DSN"), "database DSN")
	cmd.PersistentFlags().StringVar(&opts.RedisAddr, "redis-addr", os.Getenv("REDIS_ADDR"), "redis address holding cached catalog data and onboarding drafts")
	cmd.PersistentFlags().BoolVar(&opts.DryRun, "dry-run", false, "report what would change without writing")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewCleanupCommand(opts))
	cmd.AddCommand(NewNormalizeCommand(opts))

	return cmd
}
