package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/db"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/catalog"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/maintenance"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := opts.DB()
			if err != nil {
				return err
			}
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		},
	}
}

func NewSeedCommand(opts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load catalog data",
	}
	cmd.PersistentFlags().StringVarP(&file, "file", "f", "", "JSON seed file (defaults to the bundled data)")

	cmd.AddCommand(&cobra.Command{
		Use:   "skills",
		Short: "Insert onboarding skill suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := catalog.LoadSkillSeeds(file)
			if err != nil {
				return err
			}
			if opts.DryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "would seed %d skills\n", len(seeds))
				return nil
			}
			gdb, err := opts.DB()
			if err != nil {
				return err
			}
			n, err := catalog.SeedSkills(cmd.Context(), gdb, seeds)
			if err != nil {
				return err
			}
			if err := invalidateSkills(cmd.Context(), opts); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d of %d skills\n", n, len(seeds))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "gigs",
		Short: "Insert published catalog gigs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := catalog.LoadGigSeeds(file)
			if err != nil {
				return err
			}
			if opts.DryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "would seed %d gigs\n", len(seeds))
				return nil
			}
			gdb, err := opts.DB()
			if err != nil {
				return err
			}
			n, err := catalog.SeedGigs(cmd.Context(), gdb, seeds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d of %d gigs\n", n, len(seeds))
			return nil
		},
	})

	return cmd
}

func invalidateSkills(ctx context.Context, opts *RootOptions) error {
	if opts.RedisAddr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
	defer rdb.Close()
	gdb, err := opts.DB()
	if err != nil {
		return err
	}
	return catalog.NewSkillRepository(gdb, rdb, 0).Invalidate(ctx)
}

func NewCleanupCommand(opts *RootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove stale data",
	}

	drafts := &cobra.Command{
		Use:   "drafts",
		Short: "Delete onboarding drafts nobody resumed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--older-than-days must be positive, got %d", days)
			}
			drafts, release, err := opts.Drafts()
			if err != nil {
				return err
			}
			defer release()
			res, err := maintenance.CleanupDrafts(cmd.Context(), drafts, time.Duration(days)*24*time.Hour, opts.DryRun)
			if err != nil {
				return err
			}
			if opts.DryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "would delete %d onboarding drafts\n", res.Matched)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d onboarding drafts\n", res.Deleted)
			return nil
		},
	}
	drafts.Flags().IntVar(&days, "older-than-days", 30, "only drafts untouched for this many days")

	cmd.AddCommand(drafts)
	return cmd
}

func NewNormalizeCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize stored values",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "emails",
		Short: "Lower-case and trim user emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := opts.DB()
			if err != nil {
				return err
			}
			res, err := maintenance.NormalizeEmails(cmd.Context(), gdb, opts.DryRun)
			if err != nil {
				return err
			}
			verb := "updated"
			if opts.DryRun {
				verb = "would update"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d emails\n", verb, res.Updated)
			for _, email := range res.Conflicts {
				fmt.Fprintf(cmd.OutOrStdout(), "conflict: %s\n", email)
			}
			return nil
		},
	})

	return cmd
}
