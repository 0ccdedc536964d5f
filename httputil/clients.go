package httputil

import (
	"net/http"
	"time"

	"seolens/config"
)

// User agents sent with each class of outbound request
const (
	CrawlUserAgent = "SEOLens/1.0 (Page Scanner)"
	ProbeUserAgent = "SEOLens-UptimeMonitor/1.0"
	WhoisUserAgent = "SEOLens/1.0 (WHOIS Lookup)"
)

type Clients struct {
	Crawl *http.Client // page fetches during a scan, follows redirects
	Probe *http.Client // uptime probes
	API   *http.Client // RDAP and other JSON APIs
}

func NewClients(cfg *config.Config) *Clients {
	return &Clients{
		Crawl: &http.Client{Timeout: cfg.Scanner.FetchTimeout()},
		Probe: &http.Client{Timeout: cfg.Uptime.Timeout()},
		API:   &http.Client{Timeout: 15 * time.Second},
	}
}
