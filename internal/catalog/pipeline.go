package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/autoparts-catalog/internal/model"
	"github.com/Veraticus/autoparts-catalog/internal/source"
)

// Observer is notified as tables move through the pipeline.
type Observer interface {
	TablesExtracted(count int)
	TableNormalized(index, rows int)
}

// ExtractionStats are the extraction-stage facts of a run.
type ExtractionStats struct {
	Source    string
	Tables    int
	Processed int
	Failed    int
	Rows      int
}

// Result is everything a run produced.
type Result struct {
	Records    model.Table
	Rejections []Rejection
	Report     Report
	Extraction ExtractionStats
	Enrichment EnrichStats
	Removed    int
	// Empty is set when the source yielded no rows at all.
	Empty bool
}

// Pipeline composes the normalization stages. The zero value is not
// usable; start from NewPipeline.
type Pipeline struct {
	Observer        Observer
	Logger          *slog.Logger
	Aliases         AliasMap
	Collision       CollisionPolicy
	PriceColumns    []string
	Required        []string
	AllowZeroPrices bool
	InferPlacement  bool
	DropUnnamed     bool
}

// NewPipeline returns a pipeline with the built-in aliases and defaults.
func NewPipeline() *Pipeline {
	return &Pipeline{
		Aliases:      DefaultAliases(),
		Collision:    CollisionOverwrite,
		PriceColumns: []string{FieldPrice},
		Required:     append([]string(nil), DefaultRequired...),
		DropUnnamed:  true,
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Run extracts src and processes its tables. Source failures are fatal
// and returned as is; an empty extraction is reported through
// Result.Empty instead.
func (p *Pipeline) Run(ctx context.Context, src source.Source) (*Result, error) {
	ext, err := src.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", src.Name(), err)
	}

	res, err := p.Process(ctx, ext.Tables)
	if err != nil {
		return nil, err
	}
	res.Extraction.Source = src.Name()
	res.Extraction.Processed = ext.Processed
	res.Extraction.Failed = ext.Failed
	return res, nil
}

// Process runs the in-memory stages over already extracted tables. The
// enrichment scan always sees rows in extraction order.
func (p *Pipeline) Process(ctx context.Context, tables []model.Table) (*Result, error) {
	log := p.logger()
	res := &Result{Extraction: ExtractionStats{Tables: len(tables), Processed: len(tables)}}

	normalizer := ColumnNormalizer{Aliases: p.Aliases, Policy: p.Collision, Logger: log}
	normalized := make([]model.Table, 0, len(tables))
	if p.Observer != nil {
		p.Observer.TablesExtracted(len(tables))
	}
	for i, t := range tables {
		nt, err := normalizer.Normalize(t)
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", i+1, err)
		}
		normalized = append(normalized, nt)
		res.Extraction.Rows += nt.Len()
		if p.Observer != nil {
			p.Observer.TableNormalized(i, nt.Len())
		}
	}

	combined := model.Concat(normalized...)
	if combined.Len() == 0 {
		res.Empty = true
		log.Warn("No rows extracted, emitting empty output", "tables", len(tables))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	CleanTable(&combined)
	PriceParser{KeepZero: p.AllowZeroPrices}.Apply(&combined, p.PriceColumns)
	if p.InferPlacement {
		InferPlacement(&combined)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Enrichment = Enrich(&combined)
	log.Debug("Hierarchy enriched",
		"brands", res.Enrichment.Brands,
		"models", res.Enrichment.Models,
		"rows", res.Enrichment.Data)

	res.Removed = DropEmptyAndDuplicates(&combined)
	if p.DropUnnamed {
		DropUnnamedColumns(&combined)
	}

	validator := Validator{
		Required:       p.Required,
		PriceColumns:   p.PriceColumns,
		AllowZeroPrice: p.AllowZeroPrices,
	}
	res.Records, res.Rejections, res.Report = validator.Validate(combined)

	return res, nil
}
