package models

import (
	"encoding/json"
	"time"
)

type CommandType string

const (
	CmdScanDomain  CommandType = "scan_domain"
	CmdCheckUptime CommandType = "check_uptime"
	CmdFetchWhois  CommandType = "fetch_whois"
)

// Command is an operational instruction queued locally and picked up by the
// scheduler's poll loop.
type Command struct {
	ID          int64           `json:"id" db:"id"`
	Command     CommandType     `json:"command" db:"command"`
	Params      json.RawMessage `json:"params" db:"params"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at" db:"processed_at"`
}

type CommandParams struct {
	DomainID string `json:"domain_id,omitempty"`
	MaxPages int    `json:"max_pages,omitempty"`
}
