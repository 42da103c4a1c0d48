// internal/platform/config/help.go
package config

import (
	"fmt"
	"io"
	"runtime"
)

const helpText = `
slugscout - Booking engine slug discovery

USAGE:
  slugscout [options]

  Queries web archives and OSINT sources for URLs of known booking engines
  and extracts the property slugs they contain. One JSON file per engine
  is written to the output directory.

IMPORTANT:
  Use double dash (--) for long flag names: --engine, --sources
  Use single dash (-) for short flags: -e, -s

CORE OPTIONS:
  -e, --engine strings       Engines to process (default: all known engines)
  -s, --sources strings      Sources to query, comma list or "all"
                             (default: wayback,commoncrawl,alienvault,urlscan)
      --known string         YAML file with known slugs per engine (filtered out)
      --patterns string      YAML file with extra or overriding engine patterns
      --config string        YAML configuration file (or SLUGSCOUT_CONFIG)
  -o, --output string        Output directory (default: "discovered_slugs")

CONCURRENCY OPTIONS:
      --engine-workers int   Engines processed concurrently (default: 1)
      --source-workers int   Sources queried concurrently per engine (default: 1)

NETWORK OPTIONS:
      --timeout duration     Per-request HTTP timeout (default: 60s)
      --run-timeout duration Global run timeout, 0=none (default: 0)

COMMON CRAWL OPTIONS:
      --cc-indexes int       Indexes walked in historical mode (default: 40)
      --cc-mode string       historical or latest (default: historical)

OBSERVABILITY OPTIONS:
      --log-level string     debug, info, warn, error (default: info)
      --log-format string    console or json (default: console)
      --log-file string      Rotating log file in addition to stderr
      --metrics-addr string  Serve Prometheus metrics, e.g. :9090

OUTPUT OPTIONS:
      --no-table             Disable the summary table

INFO:
      --list-engines         List engine patterns and exit
      --list-sources         List sources, their auth needs and pacing, and exit
  -v, --version              Print version information and exit
  -h, --help                 Show this help message

SOURCES:
  wayback       Wayback Machine CDX (no key)
  commoncrawl   Common Crawl index (no key)
  alienvault    AlienVault OTX url_list (OTX_API_KEY optional)
  urlscan       urlscan.io search (URLSCAN_API_KEY optional)
  virustotal    VirusTotal domain URLs (VIRUSTOTAL_API_KEY required)
  crtsh         crt.sh certificate names (subdomain engines only)
  arquivo       Arquivo.pt CDX (no key)
  github        GitHub code search (GITHUB_TOKEN required)

EXAMPLES:
  All engines, default sources:
    slugscout

  One engine, every source:
    slugscout -e cloudbeds -s all

  Skip slugs already known, write elsewhere:
    slugscout --known known.yaml -o out/

  Latest Common Crawl index only:
    slugscout -s commoncrawl --cc-mode latest

ENVIRONMENT VARIABLES:
  SLUGSCOUT_ENGINES=cloudbeds,mews      Engines to process
  SLUGSCOUT_SOURCES=all                 Sources to query
  SLUGSCOUT_OUTPUT_DIR=/path            Output directory
  SLUGSCOUT_TIMEOUT=90s                 Per-request timeout
  SLUGSCOUT_LOG_LEVEL=debug             Log level

  Source-specific (replace WAYBACK with source name):
  SLUGSCOUT_SOURCES_WAYBACK_ENABLED=false
  SLUGSCOUT_SOURCES_WAYBACK_PAGE_DELAY=2s
  SLUGSCOUT_SOURCES_WAYBACK_BASE_URL=http://mirror:8080

  Note: CLI flags override environment variables, which override the config file.
`

// PrintHelp escribe el mensaje de ayuda en w.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, helpText)
}

// PrintVersion escribe la información de versión en w.
func PrintVersion(w io.Writer, version, commit, date string) {
	fmt.Fprintf(w, "slugscout %s\n", version)
	fmt.Fprintf(w, "  Commit:  %s\n", commit)
	fmt.Fprintf(w, "  Built:   %s\n", date)
	fmt.Fprintf(w, "  Go:      %s\n", getGoVersion())
}

func getGoVersion() string {
	return runtime.Version()
}
