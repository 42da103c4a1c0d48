// cmd/slugscout/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"slugscout/internal/adapters/known"
	"slugscout/internal/adapters/output"
	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/core/usecases"
	"slugscout/internal/patterns"
	"slugscout/internal/platform/config"
	"slugscout/internal/platform/errors"
	"slugscout/internal/platform/logx"
	"slugscout/internal/platform/metrics"
	"slugscout/internal/platform/registry"
	"slugscout/internal/platform/ui"

	// Conectores (se registran en init)
	_ "slugscout/internal/sources/alienvault"
	_ "slugscout/internal/sources/arquivo"
	_ "slugscout/internal/sources/commoncrawl"
	_ "slugscout/internal/sources/crtsh"
	_ "slugscout/internal/sources/github"
	_ "slugscout/internal/sources/urlscan"
	_ "slugscout/internal/sources/virustotal"
	_ "slugscout/internal/sources/wayback"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// 1. Config: defaults -> file -> env -> flags
	cfg, err := config.Load(args)
	if errors.Is(err, config.ErrHelp) {
		config.PrintHelp(stdout)
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: configuration load failed: %v\n", err)
		fmt.Fprintln(stderr, "Try: slugscout -h for help")
		return 2
	}
	if cfg.PrintVersion {
		config.PrintVersion(stdout, version, commit, date)
		return 0
	}
	if cfg.ListSources {
		if err := printSources(stdout, registry.Global(), cfg.ConnectorConfigs()); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	// 2. Logger compartido
	logger := logx.NewWithConfig(cfg.LoggerConfig())

	// 3. Catálogo de patrones (built-in + overlay)
	catalog, err := patterns.LoadRegistry(cfg.Core.PatternsFile)
	if err != nil {
		logger.Err(err, "phase", "patterns")
		return 2
	}
	if cfg.ListEngines {
		printEngines(stdout, catalog)
		return 0
	}

	knownByEngine, err := known.LoadFile(cfg.Core.KnownFile)
	if err != nil {
		logger.Err(err, "phase", "known")
		return 2
	}

	enabled, err := cfg.EnabledSources()
	if err != nil {
		logger.Err(err, "phase", "sources")
		return 2
	}
	if enabled == nil {
		enabled = defaultSources(cfg.Core.Engines)
	}

	logger.Info("slugscout starting",
		"version", version,
		"commit", commit,
		"engines", len(cfg.Core.Engines),
		"sources", enabled.Names(),
		"known", known.Total(knownByEngine),
	)

	// 4. Contexto y señales para un cierre limpio
	ctx, cancel := rootContextWithSignals(cfg.Core.RunTimeout)
	defer cancel()

	// 5. Recorders: métricas y progreso
	recorders := ports.MultiRecorder{}
	if cfg.Metrics.Addr != "" {
		rec, err := metrics.NewRecorder()
		if err != nil {
			logger.Err(err, "phase", "metrics")
			return 2
		}
		recorders = append(recorders, rec)
		go func() {
			if err := rec.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Err(err, "phase", "metrics")
			}
		}()
	}

	var progress *ui.Progress
	interactive := isTerminal(stdout)
	if interactive && !cfg.Output.TableDisabled {
		progress = ui.NewProgress(stdout, engineCount(cfg.Core.Engines, catalog))
		recorders = append(recorders, progress)
	}

	// 6. Conectores desde el registry
	connectors, err := registry.Global().Build(enabled, cfg.ConnectorConfigs(), logger)
	if err != nil {
		logger.Warn("some connectors could not be built", "error", err.Error())
	}
	if len(connectors) == 0 {
		logger.Err(fmt.Errorf("no sources enabled"))
		return 2
	}

	orch := usecases.NewEngineOrchestrator(usecases.EngineOrchestratorOptions{
		Connectors:    connectors,
		Logger:        logger,
		Recorder:      recorders,
		SourceWorkers: cfg.Core.SourceWorkers,
	})
	defer func() {
		if err := orch.Close(); err != nil {
			logger.Warn("failed to close connectors", "error", err.Error())
		}
	}()

	discoverer := usecases.NewDiscoverer(usecases.DiscovererOptions{
		Catalog:       catalog,
		Orchestrator:  orch,
		Recorder:      recorders,
		Logger:        logger,
		EngineWorkers: cfg.Core.EngineWorkers,
	})

	// 7. Ejecutar
	if progress != nil {
		if err := progress.Start(); err != nil {
			logger.Debug("progress bar unavailable", "error", err.Error())
		}
	}
	start := time.Now()
	result, runErr := discoverer.RunBatch(ctx, cfg.Core.Engines, enabled, knownByEngine)
	if progress != nil {
		progress.Stop()
	}
	if result == nil {
		logger.Err(runErr, "phase", "run")
		return 2
	}
	if runErr != nil {
		// Se escriben los resultados parciales igualmente
		logger.Err(runErr, "phase", "run", "elapsed_ms", time.Since(start).Milliseconds())
	}

	// 8. Salidas
	exporter := output.NewJSONExporter(logger)
	opts := ports.ExportOptions{
		OutputDir:    cfg.Output.Dir,
		Pretty:       cfg.Output.Pretty,
		IncludeEmpty: cfg.Output.IncludeEmpty,
	}
	if err := exporter.Export(result, opts); err != nil {
		logger.Err(err, "phase", "output")
		return 1
	}

	if !cfg.Output.TableDisabled {
		var err error
		if interactive {
			err = ui.RenderSummary(stdout, result)
		} else {
			err = output.WriteTable(stdout, result)
		}
		if err != nil {
			logger.Warn("failed to render summary", "error", err.Error())
		}
	}

	logger.Info("slugscout finished",
		"run_id", result.RunID,
		"elapsed_ms", time.Since(start).Milliseconds(),
		"engines", len(result.Engines),
		"slugs", result.TotalSlugs(),
	)

	if runErr != nil {
		return 1
	}
	return 0
}

// defaultSources: un único engine consulta todas las fuentes; un lote usa
// el subconjunto por defecto.
func defaultSources(engines []string) domain.SourceSet {
	if len(engines) == 1 {
		return domain.AllSourcesSet()
	}
	return domain.DefaultBatchSources()
}

func engineCount(engines []string, catalog *patterns.Registry) int {
	if len(engines) > 0 {
		return len(engines)
	}
	return catalog.Len()
}

func printEngines(w io.Writer, catalog *patterns.Registry) {
	for _, name := range catalog.SortedNames() {
		p, _ := catalog.Get(name)
		kind := "path"
		if _, ok := p.SubdomainRegex(); ok {
			kind = "subdomain"
		}
		fmt.Fprintf(w, "%-22s %-10s %s\n", name, kind, p.ArchiveURLTemplate())
	}
}

// printSources lista las fuentes registradas con su metadata y el estado de la credencial.
func printSources(w io.Writer, reg *registry.ConnectorRegistry, configs map[domain.ArchiveSource]ports.ConnectorConfig) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tQUERY\tAUTH\tKEY\tPAGE DELAY\tON LIMIT\tDESCRIPTION")
	for _, name := range reg.List() {
		meta, _ := reg.GetMetadata(name)
		cc := configs[name]

		query := "pattern"
		switch {
		case meta.NeedsSubdomainRegex:
			query = "subdomain"
		case meta.DomainKeyed:
			query = "domain"
		}

		auth, key := "no", "-"
		if meta.RequiresAuth {
			auth = "required"
			key = "missing"
		}
		if strings.TrimSpace(cc.APIKey) != "" {
			key = "set"
		}

		delay := meta.DefaultPageDelay
		if cc.PageDelay != 0 {
			delay = cc.PageDelay
		}
		delayText := "-"
		if delay > 0 {
			delayText = delay.String()
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\tdrop %s\t%s\n",
			name, query, auth, key, delayText, meta.RateLimitScope, meta.Description)
	}
	return tw.Flush()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// rootContextWithSignals crea el contexto raíz con timeout opcional y cancelación por señales.
// La función cancel retornada detiene el manejo de señales y cancela el contexto.
func rootContextWithSignals(timeout time.Duration) (context.Context, context.CancelFunc) {
	var base context.Context
	var baseCancel context.CancelFunc

	if timeout > 0 {
		base, baseCancel = context.WithTimeout(context.Background(), timeout)
	} else {
		base, baseCancel = context.WithCancel(context.Background())
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-ch:
			baseCancel()
		case <-base.Done():
		}
	}()

	cleanupCancel := func() {
		signal.Stop(ch)
		baseCancel()
	}

	return base, cleanupCancel
}
