package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jwalitptl/apptqueue/internal/app"
	"github.com/jwalitptl/apptqueue/internal/config"
	"github.com/jwalitptl/apptqueue/internal/repository/postgres"
	"github.com/jwalitptl/apptqueue/internal/service/activity"
	"github.com/jwalitptl/apptqueue/internal/service/queue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

type cli struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:          "queuectl",
		Short:        "Operate the appointment waiting queue",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&c.configFile, "config", "", "path to config file")

	rootCmd.AddCommand(c.migrateCmd())
	rootCmd.AddCommand(c.queueCmd())
	return rootCmd
}

func (c *cli) loadConfig() (*config.Config, error) {
	return config.Load(viper.New(), c.configFile)
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != "postgres" {
				return fmt.Errorf("migrate requires the postgres driver, got %q", cfg.Database.Driver)
			}
			db, err := postgres.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

// withManager opens the configured store and hands a queue manager to fn.
func (c *cli) withManager(cmd *cobra.Command, fn func(*queue.Manager) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	log := app.NewLogger(cfg.Log).WithFields(map[string]interface{}{"component": "queuectl"})

	store, closeStore, err := app.OpenStore(cmd.Context(), cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeStore()

	mgr := queue.NewManager(store, activity.NewService(store.Repositories().Activity, log),
		queue.WithConflictCheck(cfg.Assignment.QueueConflictCheck),
		queue.WithLogger(log),
	)
	return fn(mgr)
}

func (c *cli) queueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and rebalance the waiting queue",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the queue in position order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withManager(cmd, func(mgr *queue.Manager) error {
				items, err := mgr.List(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "POS\tQUEUE ID\tCUSTOMER\tSERVICE\tNEEDS\tDATE\tTIME")
				for _, it := range items {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
						it.QueuePosition, it.QueueID, it.CustomerName, it.ServiceName,
						it.RequiredStaffType, it.AppointmentDate, it.AppointmentTime)
				}
				return w.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "auto-assign",
		Short: "Assign the earliest queued appointment to the first eligible staff",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withManager(cmd, func(mgr *queue.Manager) error {
				res, err := mgr.AutoAssign(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	})

	drain := &cobra.Command{
		Use:   "drain",
		Short: "Repeat auto-assign until nothing more can be placed",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("max")
			return c.withManager(cmd, func(mgr *queue.Manager) error {
				res, err := mgr.Drain(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
	drain.Flags().Int("max", 0, "stop after this many assignments (0 means no limit)")
	cmd.AddCommand(drain)

	cmd.AddCommand(&cobra.Command{
		Use:   "assign <queue-id> <staff-id>",
		Short: "Assign one queue entry to a specific staff member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			queueID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid queue ID %q: %w", args[0], err)
			}
			staffID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid staff ID %q: %w", args[1], err)
			}
			return c.withManager(cmd, func(mgr *queue.Manager) error {
				res, err := mgr.ManualAssign(cmd.Context(), queueID, staffID)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	})

	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
