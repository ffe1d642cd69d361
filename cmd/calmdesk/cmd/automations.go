package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/calmdesk/calmdesk/internal/core/config"
	"github.com/calmdesk/calmdesk/internal/core/db"
	"github.com/calmdesk/calmdesk/internal/match"
	"github.com/calmdesk/calmdesk/internal/ruleset"
	"github.com/calmdesk/calmdesk/internal/store"
	"github.com/calmdesk/calmdesk/internal/types"
)

const Version = "0.1.0"

var automationsCmd = &cobra.Command{
	Use:   "automations",
	Short: "Run scheduled sweeps of time-based automation rules",
	RunE:  runAutomations,
}

func init() {
	rootCmd.AddCommand(automationsCmd)
	automationsCmd.Flags().String("rules", "", "rule snapshot file (JSON)")
	automationsCmd.Flags().Int64("org", 0, "organization id to sweep")
	automationsCmd.Flags().Bool("once", false, "run a single sweep and exit")
}

func runAutomations(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if cmd.Flags().Changed("rules") {
		cfg.RulesFile, _ = cmd.Flags().GetString("rules")
	}
	if cmd.Flags().Changed("org") {
		cfg.OrganizationID, _ = cmd.Flags().GetInt64("org")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.RulesFile == "" {
		return fmt.Errorf("--rules required")
	}

	rules, err := ruleset.Load(cfg.RulesFile)
	if err != nil {
		return err
	}
	for _, nr := range rules {
		for _, lintErr := range ruleset.Lint(nr.Rule) {
			log.Printf("rule %q: %v (condition will never match)", nr.Name, lintErr)
		}
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	st, err := store.New(database)
	if err != nil {
		return err
	}

	sweep := func() {
		ctx := context.Background()
		for _, nr := range rules {
			compiled, err := match.Compile(&nr.Rule, match.Options{ActorID: cfg.ActorID})
			if err != nil {
				log.Printf("rule %q: compile failed: %v", nr.Name, err)
				continue
			}
			if compiled.Kind == types.KindUser {
				users, err := st.MatchingUsers(ctx, compiled, cfg.OrganizationID)
				if err != nil {
					log.Printf("rule %q: %v", nr.Name, err)
					continue
				}
				log.Printf("rule %q matched %d users", nr.Name, len(users))
				continue
			}
			tickets, err := st.MatchingTickets(ctx, compiled, cfg.OrganizationID)
			if err != nil {
				log.Printf("rule %q: %v", nr.Name, err)
				continue
			}
			log.Printf("rule %q matched %d tickets", nr.Name, len(tickets))
		}
	}

	once, _ := cmd.Flags().GetBool("once")
	if once {
		sweep()
		return nil
	}

	log.Printf("Starting CalmDesk automations v%s, schedule %q", Version, cfg.SweepSchedule)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SweepSchedule, sweep); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", cfg.SweepSchedule, err)
	}
	scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	<-scheduler.Stop().Done()
	return nil
}
