// internal/platform/ui/progress.go
package ui

import (
	"io"
	"sync"

	"github.com/pterm/pterm"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
)

var _ ports.Recorder = (*Progress)(nil)

// Progress muestra una barra de progreso por engines terminados.
// Implementa ports.Recorder: un engine cuenta como terminado cuando
// se registra su etapa final (filtered).
type Progress struct {
	mu        sync.Mutex
	bar       *pterm.ProgressbarPrinter
	completed int
	total     int
	slugs     int
}

// NewProgress crea una barra para total engines que escribe en w.
func NewProgress(w io.Writer, total int) *Progress {
	bar := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Engines").
		WithWriter(w).
		WithRemoveWhenDone(true)
	return &Progress{bar: bar, total: total}
}

// Start dibuja la barra.
func (p *Progress) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	started, err := p.bar.Start()
	if err != nil {
		return err
	}
	p.bar = started
	return nil
}

// Stop retira la barra del terminal.
func (p *Progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar.IsActive {
		_, _ = p.bar.Stop()
	}
}

func (p *Progress) EngineSlugs(engine string, stage ports.Stage, n int) {
	if stage != ports.StageFiltered {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.completed++
	p.slugs += n
	if p.bar.IsActive {
		p.bar.UpdateTitle(engine)
		p.bar.Increment()
	}
}

func (p *Progress) SourceHits(string, domain.ArchiveSource, int) {}
func (p *Progress) SourceError(domain.ArchiveSource)             {}
func (p *Progress) SourcePanic(domain.ArchiveSource)             {}

// Completed retorna engines terminados y slugs nuevos acumulados.
func (p *Progress) Completed() (engines, slugs int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed, p.slugs
}
