package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"seolens/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// =============================================================================
// Domains
// =============================================================================

const domainColumns = `id, user_id, domain_name,
	health_score, total_pages_scanned, pages_missing_title, pages_missing_meta,
	pages_missing_h1, pages_2xx, pages_4xx, pages_5xx, last_scan_at,
	uptime_enabled, uptime_check_interval_minutes, last_uptime_status,
	last_uptime_checked_at, last_response_time_ms, uptime_24h_percent,
	uptime_7d_percent, expiry_date, registrar_name, created_at, updated_at`

func scanDomain(row pgx.Row) (*models.Domain, error) {
	var d models.Domain
	err := row.Scan(
		&d.ID, &d.UserID, &d.DomainName,
		&d.HealthScore, &d.TotalPagesScanned, &d.PagesMissingTitle, &d.PagesMissingMeta,
		&d.PagesMissingH1, &d.Pages2xx, &d.Pages4xx, &d.Pages5xx, &d.LastScanAt,
		&d.UptimeEnabled, &d.UptimeIntervalMin, &d.LastUptimeStatus,
		&d.LastUptimeCheckedAt, &d.LastResponseTimeMs, &d.Uptime24hPercent,
		&d.Uptime7dPercent, &d.ExpiryDate, &d.RegistrarName, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostgresStore) GetDomain(ctx context.Context, id uuid.UUID) (*models.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE id = $1`

	d, err := scanDomain(s.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListUptimeDomains returns every domain with uptime monitoring enabled
func (s *PostgresStore) ListUptimeDomains(ctx context.Context) ([]models.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains WHERE uptime_enabled = true`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []models.Domain
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, err
		}
		domains = append(domains, *d)
	}
	return domains, rows.Err()
}

// ListStaleScanDomains returns domains never scanned or last scanned before
// the cutoff, oldest first.
func (s *PostgresStore) ListStaleScanDomains(ctx context.Context, olderThan time.Duration, limit int) ([]models.Domain, error) {
	query := `SELECT ` + domainColumns + ` FROM domains
		WHERE last_scan_at IS NULL OR last_scan_at < $1
		ORDER BY last_scan_at NULLS FIRST
		LIMIT $2`

	cutoff := time.Now().Add(-olderThan)
	rows, err := s.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []models.Domain
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, err
		}
		domains = append(domains, *d)
	}
	return domains, rows.Err()
}

// ScanSummary is the wholesale replacement for a domain's SEO summary fields,
// written once per completed scan.
type ScanSummary struct {
	HealthScore       int
	TotalPagesScanned int
	PagesMissingTitle int
	PagesMissingMeta  int
	PagesMissingH1    int
	Pages2xx          int
	Pages4xx          int
	Pages5xx          int
	LastScanAt        time.Time
}

func (s *PostgresStore) UpdateDomainScanSummary(ctx context.Context, domainID uuid.UUID, sum *ScanSummary) error {
	query := `
		UPDATE domains SET
			health_score = $2, total_pages_scanned = $3, pages_missing_title = $4,
			pages_missing_meta = $5, pages_missing_h1 = $6, pages_2xx = $7,
			pages_4xx = $8, pages_5xx = $9, last_scan_at = $10, updated_at = NOW()
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query, domainID,
		sum.HealthScore, sum.TotalPagesScanned, sum.PagesMissingTitle,
		sum.PagesMissingMeta, sum.PagesMissingH1, sum.Pages2xx,
		sum.Pages4xx, sum.Pages5xx, sum.LastScanAt,
	)
	return err
}

// UptimeSummary is the wholesale replacement for a domain's uptime fields,
// recomputed after every sample.
type UptimeSummary struct {
	Status           models.UptimeStatus
	CheckedAt        time.Time
	ResponseTimeMs   *int
	Uptime24hPercent float64
	Uptime7dPercent  float64
}

func (s *PostgresStore) UpdateDomainUptimeSummary(ctx context.Context, domainID uuid.UUID, sum *UptimeSummary) error {
	query := `
		UPDATE domains SET
			last_uptime_status = $2, last_uptime_checked_at = $3,
			last_response_time_ms = $4, uptime_24h_percent = $5,
			uptime_7d_percent = $6, updated_at = NOW()
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query, domainID,
		sum.Status, sum.CheckedAt, sum.ResponseTimeMs,
		sum.Uptime24hPercent, sum.Uptime7dPercent,
	)
	return err
}

// UpdateDomainWhois writes registration metadata, keeping existing values
// where the lookup came back empty.
func (s *PostgresStore) UpdateDomainWhois(ctx context.Context, domainID uuid.UUID, expiryDate *time.Time, registrarName *string) error {
	query := `
		UPDATE domains SET
			expiry_date = COALESCE($2, expiry_date),
			registrar_name = COALESCE($3, registrar_name),
			updated_at = NOW()
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query, domainID, expiryDate, registrarName)
	return err
}

// =============================================================================
// Domain status (redirect resolver output; read-only here)
// =============================================================================

func (s *PostgresStore) GetDomainStatus(ctx context.Context, domainID uuid.UUID) (*models.DomainStatus, error) {
	query := `
		SELECT domain_id, final_url, final_status_code, redirect_chain, last_checked_at
		FROM domain_status WHERE domain_id = $1`

	var st models.DomainStatus
	err := s.pool.QueryRow(ctx, query, domainID).Scan(
		&st.DomainID, &st.FinalURL, &st.FinalStatusCode, &st.RedirectChain, &st.LastCheckedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// =============================================================================
// Site pages
// =============================================================================

// UpsertSitePage inserts or updates the page keyed by (domain_id, url) and
// fills in the row's id.
func (s *PostgresStore) UpsertSitePage(ctx context.Context, p *models.SitePage) error {
	query := `
		INSERT INTO site_pages (
			id, user_id, domain_id, url, http_status, title, meta_description,
			canonical_url, robots_directive, h1, last_scanned_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (domain_id, url) DO UPDATE SET
			http_status = EXCLUDED.http_status,
			title = EXCLUDED.title,
			meta_description = EXCLUDED.meta_description,
			canonical_url = EXCLUDED.canonical_url,
			robots_directive = EXCLUDED.robots_directive,
			h1 = EXCLUDED.h1,
			last_scanned_at = EXCLUDED.last_scanned_at
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		p.ID, p.UserID, p.DomainID, p.URL, p.HTTPStatus, p.Title, p.MetaDescription,
		p.CanonicalURL, p.RobotsDirective, p.H1, p.LastScannedAt,
	).Scan(&p.ID)
}

// =============================================================================
// Suggestions
// =============================================================================

// ReplaceSuggestions swaps out the whole suggestion set for a domain in one
// transaction, so readers never observe the window between delete and insert.
func (s *PostgresStore) ReplaceSuggestions(ctx context.Context, domainID uuid.UUID, suggestions []models.Suggestion) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM suggestions WHERE domain_id = $1`, domainID); err != nil {
		return fmt.Errorf("delete old suggestions: %w", err)
	}

	for i := range suggestions {
		sg := &suggestions[i]
		_, err := tx.Exec(ctx, `
			INSERT INTO suggestions (
				id, user_id, domain_id, page_id, scope, suggestion_type,
				title, description, severity, impact, effort, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			sg.ID, sg.UserID, sg.DomainID, sg.PageID, sg.Scope, sg.Type,
			sg.Title, sg.Description, sg.Severity, sg.Impact, sg.Effort, sg.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert suggestion: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// =============================================================================
// Uptime checks
// =============================================================================

func (s *PostgresStore) InsertUptimeCheck(ctx context.Context, c *models.UptimeCheck) error {
	query := `
		INSERT INTO uptime_checks (id, domain_id, checked_at, status, http_status, response_time_ms, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		c.ID, c.DomainID, c.CheckedAt, c.Status, c.HTTPStatus, c.ResponseTimeMs, c.ErrorMessage,
	)
	return err
}

// ListUptimeChecksSince returns a domain's checks newer than since, newest
// first.
func (s *PostgresStore) ListUptimeChecksSince(ctx context.Context, domainID uuid.UUID, since time.Time) ([]models.UptimeCheck, error) {
	query := `
		SELECT id, domain_id, checked_at, status, http_status, response_time_ms, error_message
		FROM uptime_checks
		WHERE domain_id = $1 AND checked_at >= $2
		ORDER BY checked_at DESC`

	rows, err := s.pool.Query(ctx, query, domainID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []models.UptimeCheck
	for rows.Next() {
		var c models.UptimeCheck
		if err := rows.Scan(
			&c.ID, &c.DomainID, &c.CheckedAt, &c.Status, &c.HTTPStatus, &c.ResponseTimeMs, &c.ErrorMessage,
		); err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

// =============================================================================
// Scan runs
// =============================================================================

func (s *PostgresStore) CreateScanRun(ctx context.Context, run *models.ScanRun) error {
	query := `
		INSERT INTO scan_runs (domain_id, started_at, status, pages_scanned, suggestions_created, health_score, errors_count, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		run.DomainID, run.StartedAt, run.Status, run.PagesScanned,
		run.SuggestionsCreated, run.HealthScore, run.ErrorsCount, run.ErrorMessage,
	).Scan(&run.ID)
}

func (s *PostgresStore) UpdateScanRun(ctx context.Context, run *models.ScanRun) error {
	query := `
		UPDATE scan_runs SET
			finished_at = $2, status = $3, pages_scanned = $4,
			suggestions_created = $5, health_score = $6, errors_count = $7, error_message = $8
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		run.ID, run.FinishedAt, run.Status, run.PagesScanned,
		run.SuggestionsCreated, run.HealthScore, run.ErrorsCount, run.ErrorMessage,
	)
	return err
}

// =============================================================================
// Scan locks
// =============================================================================

// ScanLock is a session-level advisory lock pinned to one pooled connection;
// it serializes scans of the same domain across processes.
type ScanLock struct {
	conn *pgxpool.Conn
	key  int64
}

// AcquireScanLock takes the per-domain advisory lock, returning (nil, nil)
// when another scan of this domain already holds it.
func (s *PostgresStore) AcquireScanLock(ctx context.Context, domainID uuid.UUID) (*ScanLock, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire conn: %w", err)
	}

	key := int64(binary.BigEndian.Uint64(domainID[:8]))

	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&locked); err != nil {
		conn.Release()
		return nil, fmt.Errorf("try advisory lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, nil
	}

	return &ScanLock{conn: conn, key: key}, nil
}

// Release unlocks and returns the connection to the pool
func (l *ScanLock) Release(ctx context.Context) {
	if l == nil || l.conn == nil {
		return
	}
	l.conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, l.key)
	l.conn.Release()
	l.conn = nil
}
