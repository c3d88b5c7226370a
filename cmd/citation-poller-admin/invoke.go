package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/target/citation-poller/internal/bootstrap"
	"github.com/target/citation-poller/internal/domain/lookup"
)

func parseInvokeFlags(args []string) (lookup.Invocation, error) {
	fs := flag.NewFlagSet("invoke", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var inv lookup.Invocation
	fs.StringVar(&inv.CampaignID, "campaign", "", "Campaign to poll (required)")
	fs.StringVar(&inv.ScheduleName, "schedule", "", "Trigger cancelled once the lookup completes (required)")
	fs.StringVar(&inv.OrganizationID, "org", "", "Organization notified on completion (required)")

	if err := fs.Parse(args); err != nil {
		return lookup.Invocation{}, err
	}
	inv.Normalize()
	if err := inv.Validate(); err != nil {
		return lookup.Invocation{}, err
	}
	return inv, nil
}

// runInvoke runs one poll cycle with the production wiring and prints its response.
func runInvoke(cmdCtx *commandContext, args []string) error {
	inv, err := parseInvokeFlags(args)
	if err != nil {
		return err
	}
	if cmdCtx.Config.Provider.APIKey == "" {
		return errors.New("PROVIDER_API_KEY is required")
	}

	db, redisClient, err := connectInfra(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      &cmdCtx.Config,
		DB:          db,
		RedisClient: redisClient,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return err
	}

	res := services.Cycle.Run(cmdCtx.Ctx, inv)

	enc := json.NewEncoder(cmdCtx.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(res); encErr != nil {
		return fmt.Errorf("print result: %w", encErr)
	}
	if !res.OK() {
		return fmt.Errorf("poll cycle failed with status %d", res.StatusCode)
	}
	return nil
}
