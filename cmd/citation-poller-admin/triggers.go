package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/data"
	"github.com/target/citation-poller/internal/domain/trigger"
	"github.com/target/citation-poller/internal/service"
)

const triggerCommandTimeout = 2 * time.Minute

// withTriggerService connects to Postgres and hands fn a TriggerService bound to it.
func withTriggerService(cmdCtx *commandContext, fn func(context.Context, *service.TriggerService) error) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, triggerCommandTimeout)
	defer cancel()

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	svc, err := service.NewTriggerService(service.TriggerServiceOptions{
		Repo:   data.NewTriggerAdminRepo(db),
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return err
	}
	return fn(ctx, svc)
}

type triggerListOptions struct {
	CampaignID string
	Limit      int
	Offset     int
	JSON       bool
}

func parseTriggerListFlags(args []string) (triggerListOptions, error) {
	fs := flag.NewFlagSet("trigger-list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts triggerListOptions
	fs.StringVar(&opts.CampaignID, "campaign", "", "Only list triggers bound to this campaign")
	fs.IntVar(&opts.Limit, "limit", 50, "Maximum triggers to list (max 500)")
	fs.IntVar(&opts.Offset, "offset", 0, "Number of triggers to skip")
	fs.BoolVar(&opts.JSON, "json", false, "Print JSON instead of a table")

	if err := fs.Parse(args); err != nil {
		return triggerListOptions{}, err
	}
	opts.CampaignID = strings.TrimSpace(opts.CampaignID)
	if opts.Limit < 1 || opts.Limit > 500 {
		return triggerListOptions{}, errors.New("--limit must be between 1 and 500")
	}
	if opts.Offset < 0 {
		return triggerListOptions{}, errors.New("--offset cannot be negative")
	}
	return opts, nil
}

func runTriggerList(cmdCtx *commandContext, args []string) error {
	opts, err := parseTriggerListFlags(args)
	if err != nil {
		return err
	}
	return withTriggerService(cmdCtx, func(ctx context.Context, svc *service.TriggerService) error {
		triggers, listErr := svc.List(ctx, core.ListTriggersOptions{
			CampaignID: opts.CampaignID,
			Limit:      opts.Limit,
			Offset:     opts.Offset,
		})
		if listErr != nil {
			return listErr
		}
		if opts.JSON {
			enc := json.NewEncoder(cmdCtx.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(triggers)
		}
		return renderTriggers(cmdCtx.Stdout, triggers)
	})
}

func renderTriggers(w io.Writer, triggers []*trigger.Trigger) error {
	if len(triggers) == 0 {
		return writeln(w, "(no triggers found)")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "NAME\tCAMPAIGN\tORGANIZATION\tSCHEDULE\tNEXT RUN (UTC)\tLAST FIRED (UTC)"); err != nil {
		return fmt.Errorf("write triggers header row: %w", err)
	}
	for _, t := range triggers {
		lastFired := "-"
		if t.LastFiredAt != nil {
			lastFired = t.LastFiredAt.UTC().Format(time.RFC3339)
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Name,
			t.CampaignID,
			t.OrganizationID,
			t.Schedule,
			t.NextRunAt.UTC().Format(time.RFC3339),
			lastFired,
		); err != nil {
			return fmt.Errorf("write trigger row: %w", err)
		}
	}
	return tw.Flush()
}

func parseTriggerUpsertFlags(args []string) (trigger.UpsertRequest, error) {
	fs := flag.NewFlagSet("trigger-upsert", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		req     trigger.UpsertRequest
		startAt string
	)
	fs.StringVar(&req.Name, "name", "", "Trigger name (required)")
	fs.StringVar(&req.CampaignID, "campaign", "", "Campaign to poll (required)")
	fs.StringVar(&req.OrganizationID, "org", "", "Organization to notify on completion (required)")
	fs.StringVar(&req.Schedule, "schedule", "@every 5m", "Cron expression or descriptor")
	fs.StringVar(&startAt, "start-at", "", "First firing time (RFC 3339); defaults to the next activation")

	if err := fs.Parse(args); err != nil {
		return trigger.UpsertRequest{}, err
	}
	if startAt = strings.TrimSpace(startAt); startAt != "" {
		ts, err := time.Parse(time.RFC3339, startAt)
		if err != nil {
			return trigger.UpsertRequest{}, fmt.Errorf("--start-at: %w", err)
		}
		req.StartAt = &ts
	}
	if err := req.Validate(); err != nil {
		return trigger.UpsertRequest{}, err
	}
	return req, nil
}

func runTriggerUpsert(cmdCtx *commandContext, args []string) error {
	req, err := parseTriggerUpsertFlags(args)
	if err != nil {
		return err
	}
	return withTriggerService(cmdCtx, func(ctx context.Context, svc *service.TriggerService) error {
		t, upsertErr := svc.Upsert(ctx, req)
		if upsertErr != nil {
			return upsertErr
		}
		return renderTriggers(cmdCtx.Stdout, []*trigger.Trigger{t})
	})
}

type triggerDeleteOptions struct {
	Name string
	Yes  bool
}

func parseTriggerDeleteFlags(args []string) (triggerDeleteOptions, error) {
	fs := flag.NewFlagSet("trigger-delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts triggerDeleteOptions
	fs.StringVar(&opts.Name, "name", "", "Trigger name (required)")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return triggerDeleteOptions{}, err
	}
	opts.Name = strings.TrimSpace(opts.Name)
	if opts.Name == "" {
		return triggerDeleteOptions{}, errors.New("--name is required")
	}
	return opts, nil
}

func runTriggerDelete(cmdCtx *commandContext, args []string) error {
	opts, err := parseTriggerDeleteFlags(args)
	if err != nil {
		return err
	}
	if !opts.Yes {
		prompt := fmt.Sprintf("About to delete poll trigger %q; its campaign will no longer be polled.", opts.Name)
		if confirmErr := confirmAction(cmdCtx.Stdout, cmdCtx.Stdin, prompt); confirmErr != nil {
			return confirmErr
		}
	}
	return withTriggerService(cmdCtx, func(ctx context.Context, svc *service.TriggerService) error {
		if delErr := svc.Delete(ctx, opts.Name); delErr != nil {
			return delErr
		}
		return writef(cmdCtx.Stdout, "deleted %s\n", opts.Name)
	})
}

// triggerFile is the YAML layout accepted by trigger-import.
type triggerFile struct {
	Triggers []trigger.UpsertRequest `yaml:"triggers"`
}

// loadTriggerFile decodes and validates every trigger before anything is written.
func loadTriggerFile(r io.Reader) ([]trigger.UpsertRequest, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read trigger file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var file triggerFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("trigger file is empty")
		}
		return nil, fmt.Errorf("parse trigger file: %w", err)
	}
	if len(file.Triggers) == 0 {
		return nil, errors.New("trigger file lists no triggers")
	}

	seen := make(map[string]int, len(file.Triggers))
	for i := range file.Triggers {
		req := &file.Triggers[i]
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("trigger #%d: %w", i+1, err)
		}
		if prev, dup := seen[req.Name]; dup {
			return nil, fmt.Errorf("trigger #%d: name %q already used by trigger #%d", i+1, req.Name, prev)
		}
		seen[req.Name] = i + 1
	}
	return file.Triggers, nil
}

type triggerImportOptions struct {
	Path   string
	DryRun bool
}

func parseTriggerImportFlags(args []string) (triggerImportOptions, error) {
	fs := flag.NewFlagSet("trigger-import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts triggerImportOptions
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Validate the file without writing")

	if err := fs.Parse(args); err != nil {
		return triggerImportOptions{}, err
	}
	if fs.NArg() != 1 {
		return triggerImportOptions{}, errors.New("usage: trigger-import [--dry-run] <file.yaml>")
	}
	opts.Path = fs.Arg(0)
	return opts, nil
}

func runTriggerImport(cmdCtx *commandContext, args []string) error {
	opts, err := parseTriggerImportFlags(args)
	if err != nil {
		return err
	}

	f, err := os.Open(opts.Path)
	if err != nil {
		return fmt.Errorf("open trigger file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			cmdCtx.Logger.Warn("close trigger file failed", "error", cerr)
		}
	}()

	reqs, err := loadTriggerFile(f)
	if err != nil {
		return err
	}
	if opts.DryRun {
		return writef(cmdCtx.Stdout, "%d triggers valid; nothing written (dry run)\n", len(reqs))
	}

	return withTriggerService(cmdCtx, func(ctx context.Context, svc *service.TriggerService) error {
		saved := make([]*trigger.Trigger, 0, len(reqs))
		for _, req := range reqs {
			t, upsertErr := svc.Upsert(ctx, req)
			if upsertErr != nil {
				return fmt.Errorf("import %s: %w", req.Name, upsertErr)
			}
			saved = append(saved, t)
		}
		return renderTriggers(cmdCtx.Stdout, saved)
	})
}
