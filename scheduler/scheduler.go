package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"seolens/config"
	"seolens/models"
	"seolens/services"
	"seolens/storage"
)

// Triggerable allows workers to be kicked off out of schedule
type Triggerable interface {
	Trigger()
}

type Scheduler struct {
	cfg    *config.Config
	scans  *services.ScanService
	whois  *services.WhoisService
	store  *storage.PostgresStore
	ops    *storage.SQLiteStore
	cron   *cron.Cron
	stopCh chan struct{}

	uptimeWorker Triggerable
}

func New(cfg *config.Config, scans *services.ScanService, whois *services.WhoisService, store *storage.PostgresStore, ops *storage.SQLiteStore) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		scans:  scans,
		whois:  whois,
		store:  store,
		ops:    ops,
		cron:   cron.New(),
		stopCh: make(chan struct{}),
	}
}

// SetUptimeWorker registers the uptime worker for cron and manual triggering
func (s *Scheduler) SetUptimeWorker(w Triggerable) {
	s.uptimeWorker = w
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollCommands(ctx)

	if s.cfg.Scheduler.UptimeCron != "" {
		log.Printf("Starting uptime schedule: %s", s.cfg.Scheduler.UptimeCron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.UptimeCron, func() {
			if s.uptimeWorker != nil {
				s.uptimeWorker.Trigger()
			}
		})
		if err != nil {
			return fmt.Errorf("invalid uptime cron expression: %w", err)
		}
	}

	if s.cfg.Scheduler.ScanCron != "" {
		log.Printf("Starting rescan schedule: %s", s.cfg.Scheduler.ScanCron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.ScanCron, func() {
			s.rescanStale(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid scan cron expression: %w", err)
		}
	}

	if s.cfg.Scheduler.UptimeCron == "" && s.cfg.Scheduler.ScanCron == "" {
		log.Println("No schedule configured, daemon will only respond to commands")
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	close(s.stopCh)
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cmds, err := s.ops.GetPendingCommands()
			if err != nil {
				log.Printf("Error getting commands: %v", err)
				continue
			}

			for _, cmd := range cmds {
				log.Printf("Processing command: %s", cmd.Command)
				if err := s.handleCommand(ctx, &cmd); err != nil {
					log.Printf("Command error: %v", err)
				}
				if err := s.ops.MarkCommandProcessed(cmd.ID); err != nil {
					log.Printf("Error marking command processed: %v", err)
				}
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) handleCommand(ctx context.Context, cmd *models.Command) error {
	var params models.CommandParams
	if len(cmd.Params) > 0 {
		if err := json.Unmarshal(cmd.Params, &params); err != nil {
			return fmt.Errorf("bad command params: %w", err)
		}
	}

	switch cmd.Command {
	case models.CmdScanDomain:
		domainID, err := uuid.Parse(params.DomainID)
		if err != nil {
			return fmt.Errorf("bad domain id %q: %w", params.DomainID, err)
		}
		go func() {
			if _, err := s.scans.Scan(ctx, domainID, params.MaxPages); err != nil {
				if errors.Is(err, services.ErrScanInProgress) {
					log.Printf("Scan of %s skipped: already running", domainID)
					return
				}
				log.Printf("Scan of %s failed: %v", domainID, err)
			}
		}()
		return nil

	case models.CmdCheckUptime:
		if s.uptimeWorker != nil {
			s.uptimeWorker.Trigger()
			log.Println("Uptime worker triggered via command")
		}
		return nil

	case models.CmdFetchWhois:
		domainID, err := uuid.Parse(params.DomainID)
		if err != nil {
			return fmt.Errorf("bad domain id %q: %w", params.DomainID, err)
		}
		go func() {
			if _, err := s.whois.Fetch(ctx, domainID); err != nil {
				log.Printf("Whois lookup for %s failed: %v", domainID, err)
			}
		}()
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd.Command)
	}
}

// rescanStale crawls domains whose last scan is older than the configured
// staleness, one at a time. The advisory scan lock makes an overlap with a
// manually triggered scan harmless.
func (s *Scheduler) rescanStale(ctx context.Context) {
	domains, err := s.store.ListStaleScanDomains(ctx, s.cfg.Scanner.RescanAfter(), s.cfg.Scanner.RescanBatch)
	if err != nil {
		log.Printf("Rescan: failed to list stale domains: %v", err)
		return
	}

	for i := range domains {
		d := &domains[i]
		if _, err := s.scans.Scan(ctx, d.ID, s.cfg.Scanner.MaxPages); err != nil {
			if errors.Is(err, services.ErrScanInProgress) {
				continue
			}
			log.Printf("Rescan: %s failed: %v", d.DomainName, err)
		}
	}
}
