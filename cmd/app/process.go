package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pwnholic/mobilitywatch/internal"
	"github.com/pwnholic/mobilitywatch/internal/capture"
	"github.com/pwnholic/mobilitywatch/internal/clients"
	"github.com/pwnholic/mobilitywatch/internal/config"
	"github.com/pwnholic/mobilitywatch/internal/dataset"
	"github.com/pwnholic/mobilitywatch/internal/exports"
	"github.com/pwnholic/mobilitywatch/internal/report"
	"github.com/pwnholic/mobilitywatch/internal/visual"
)

type exportProcess struct {
	cfg      *config.Config
	client   *clients.Client
	exporter *exports.Exporter
	saved    atomic.Int32
}

func newExportProcess(cfg *config.Config, flag *Flag, log *internal.Logger) *exportProcess {
	p := &exportProcess{
		cfg:    cfg,
		client: clients.NewClient(&cfg.HTTP),
	}

	outputDir := cfg.Export.OutputDir
	if flag.OutputDir != "" {
		outputDir = flag.OutputDir
	}
	dir := exports.DirSaver{Dir: outputDir}
	saver := exports.SaverFunc(func(data []byte, filename, mime string) error {
		if err := dir.Save(data, filename, mime); err != nil {
			return err
		}
		p.saved.Add(1)
		return nil
	})

	e := exports.New(saver, capture.New(), report.NewPDFBuilder())
	e.Logger = log
	e.Alerter = exports.LogAlerter{Logger: log}
	e.Namer.Prefix = cfg.Export.Prefix
	e.Namer.AllScope = cfg.Export.AllScope
	e.PNGScale = cfg.Export.PNGScale
	e.PrettyJSON = cfg.Export.Pretty()
	e.Composer.ChartScale = cfg.Export.ChartScale
	e.Composer.Product = cfg.Export.Product
	p.exporter = e
	return p
}

func (p *exportProcess) close() {
	if err := p.client.Close(); err != nil {
		internal.Debug("closing http client: %v", err)
	}
}

func (p *exportProcess) loadDataset(ctx context.Context, source string) (*dataset.Dataset, error) {
	if clients.IsRemote(source) {
		internal.Info("Fetching dataset from %s", source)
		return p.client.FetchDataset(ctx, source)
	}
	return dataset.Load(source)
}

func (p *exportProcess) loadMarkup(ctx context.Context, source string) (*visual.Markup, error) {
	if clients.IsRemote(source) {
		return p.client.FetchMarkup(ctx, source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return &visual.Markup{Label: filepath.Base(source), HTML: data}, nil
}

func (p *exportProcess) run(ctx context.Context, flag *Flag) error {
	startTime := time.Now()

	data, err := p.loadDataset(ctx, flag.Dataset)
	if err != nil {
		return fmt.Errorf("error loading dataset: %w", err)
	}
	country, err := data.Lookup(flag.Country)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(data.Codes(), ", "))
	}
	scope := strings.ToUpper(flag.Country)
	if strings.EqualFold(flag.Country, p.cfg.Export.AllScope) {
		scope = flag.Country
	}
	internal.Info("Exporting %s for %s in %d format(s)", flag.Section, data.Name(scope), len(flag.Formats))

	formats := flag.Formats
	var run func(context.Context, exports.Format) error
	if flag.Section == dataset.SectionComplete {
		complete := country.Complete()
		run = func(ctx context.Context, f exports.Format) error {
			return p.exporter.ExportComplete(ctx, f, complete, scope)
		}
	} else {
		section, err := country.Section(flag.Section)
		if err != nil {
			return err
		}
		req := exports.Request{Data: section.Data, FilenameBase: section.Name, Scope: scope}
		if section.Chart != nil {
			req.Visual = section.Chart
		}
		if flag.Markup != "" {
			markup, err := p.loadMarkup(ctx, flag.Markup)
			if err != nil {
				return fmt.Errorf("error loading markup: %w", err)
			}
			req.Visual = markup
		}
		// PNG and PDF share one capture; the PDF runs in the PNG task.
		paired := req.Visual != nil && slices.Contains(formats, exports.PNG) && slices.Contains(formats, exports.PDF)
		if paired {
			formats = slices.DeleteFunc(slices.Clone(formats), func(f exports.Format) bool { return f == exports.PDF })
		}
		run = func(ctx context.Context, f exports.Format) error {
			if paired && f == exports.PNG {
				return p.exporter.ExportPNGAndPDF(ctx, req)
			}
			return p.exporter.Export(ctx, f, req)
		}
	}

	if err := p.exportFormats(ctx, formats, run); err != nil {
		return err
	}

	internal.Info("[SUMMARY] Saved %d of %d file(s) in %v", p.saved.Load(), len(flag.Formats), time.Since(startTime))
	return nil
}

// exportFormats runs every format concurrently. Only save failures come
// back as errors; they are all reported together.
func (p *exportProcess) exportFormats(ctx context.Context, formats []exports.Format, run func(context.Context, exports.Format) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Export.Concurrency)
	errChan := make(chan error, len(formats))

	for _, f := range formats {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := run(ctx, f); err != nil {
				errChan <- fmt.Errorf("%s: %w", f, err)
			}
			return nil
		})
	}

	err := g.Wait()
	close(errChan)
	var errs []error
	for e := range errChan {
		errs = append(errs, e)
	}
	if len(errs) > 0 {
		return fmt.Errorf("completed with %d errors: %w", len(errs), errors.Join(errs...))
	}
	return err
}
