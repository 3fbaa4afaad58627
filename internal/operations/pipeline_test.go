package operations

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nabii/internal/config"
	"nabii/internal/dataprocessing"
	apperrors "nabii/internal/errors"
	"nabii/internal/exporter"
	"nabii/internal/shared/testutil"
	"nabii/pkg/contracts/domain"
)

var scenarioRows = dataprocessing.SliceSource{
	{Row: 2, DealName: "Clinic A", Investor: "Dev Bank", Segment: "DFI", MappedSector: "Health", TicketRaw: "2", SDGText: "SDG 3", Country: "Zambia", InstrumentType: "Debt", Year: 2021},
	{Row: 3, DealName: "Clinic B", Investor: "Dev Bank", Segment: "DFI", MappedSector: "Health", TicketRaw: "Undisclosed", Country: "Kenya", InstrumentType: "Debt", Year: 2021},
	{Row: 4, DealName: "Lodge", Investor: "Green Fund", Segment: "Fund", RawSector: "Tourism", TicketRaw: "5", SDGText: "SDG 8 SDG 13", Country: "Zambia", Anonymized: true, InstrumentType: "Equity", Year: 2022},
}

type failingSource struct{ err error }

func (s failingSource) Rows(context.Context) ([]domain.RawDeal, error) { return nil, s.err }

func newTestPipeline(t *testing.T, source dataprocessing.RowSource, dir string, opts StepOptions) *Pipeline {
	t.Helper()
	registry := NewRegistry()
	require.NoError(t, RegisterDefaultSteps(registry, exporter.NewDocumentWriter(dir, nil), opts, nil))
	manager := NewManager(registry, &Config{Parallel: true}, nil, nil)
	return NewPipeline(source, dataprocessing.NewEnricher("Zambia", nil), manager, dir, nil)
}

func defaultOptions() StepOptions {
	return StepOptions{TopDeals: 10, RootLabel: config.DefaultRootLabel, EnrichedCSV: true, EnrichedParquet: true}
}

func readDocument(t *testing.T, dir string, doc domain.Document, v interface{}) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, doc.FileName()))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestPipelineWritesEveryDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	p := newTestPipeline(t, scenarioRows, dir, defaultOptions())

	result, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Report.Succeeded())
	assert.Equal(t, RunStatusCompleted, result.Report.Status)
	assert.Equal(t, 3, result.Report.Deals)
	assert.Len(t, result.Report.Steps, len(domain.Documents())+2)
	assert.Equal(t, dataprocessing.Stats{Total: 3, Anonymized: 1, Disclosed: 2, ShowIndividual: 1, WithTicket: 2, WithSDG: 2}, result.Stats)

	for _, doc := range domain.Documents() {
		assert.FileExists(t, filepath.Join(dir, doc.FileName()))
	}
	assert.FileExists(t, filepath.Join(dir, config.EnrichedCSVFile))
	assert.FileExists(t, filepath.Join(dir, config.EnrichedParquetFile))

	var topDeals []domain.TopDeal
	readDocument(t, dir, domain.DocumentTopDeals, &topDeals)
	require.Len(t, topDeals, 1)
	assert.Equal(t, "Clinic A", topDeals[0].Name)

	var capital domain.CapitalSourceData
	readDocument(t, dir, domain.DocumentCapitalSource, &capital)
	assert.Equal(t, []domain.CapitalSourceSummary{
		{Source: domain.CapitalSourceDomestic, TotalValue: 7, DealCount: 2},
		{Source: domain.CapitalSourceInternational, TotalValue: 0, DealCount: 1},
	}, capital.Summary)

	var sankey domain.SankeyData
	readDocument(t, dir, domain.DocumentSankey, &sankey)
	for _, link := range sankey.Links {
		assert.Less(t, link.Source, len(sankey.Nodes))
		assert.Less(t, link.Target, len(sankey.Nodes))
	}
}

func TestPipelineIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	p := newTestPipeline(t, scenarioRows, dir, StepOptions{TopDeals: 10, RootLabel: "Root"})

	_, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	first := make(map[domain.Document][]byte)
	for _, doc := range domain.Documents() {
		data, err := os.ReadFile(filepath.Join(dir, doc.FileName()))
		require.NoError(t, err)
		first[doc] = data
	}

	_, err = p.Run(context.Background(), nil)
	require.NoError(t, err)
	for _, doc := range domain.Documents() {
		data, err := os.ReadFile(filepath.Join(dir, doc.FileName()))
		require.NoError(t, err)
		assert.Equal(t, string(first[doc]), string(data), doc.FileName())
	}
}

func TestPipelineLoadFailureWritesNothing(t *testing.T) {
	tests := []struct {
		name   string
		source dataprocessing.RowSource
	}{
		{name: "plain error", source: failingSource{err: errors.New("permission denied")}},
		{name: "load error", source: failingSource{err: apperrors.NewLoadError("missing column", apperrors.ErrMissingColumn)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			p := newTestPipeline(t, tt.source, dir, defaultOptions())

			result, err := p.Run(context.Background(), nil)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLoad))
			assert.NoDirExists(t, dir)
		})
	}
}

func TestPipelineSelectedSteps(t *testing.T) {
	dir := t.TempDir()
	p := newTestPipeline(t, scenarioRows, dir, defaultOptions())

	result, err := p.Run(context.Background(), []string{"sdg", "sankey"})
	require.NoError(t, err)
	require.Len(t, result.Report.Steps, 2)

	assert.FileExists(t, filepath.Join(dir, domain.DocumentSDG.FileName()))
	assert.FileExists(t, filepath.Join(dir, domain.DocumentSankey.FileName()))
	assert.NoFileExists(t, filepath.Join(dir, domain.DocumentTreemap.FileName()))

	_, err = p.Run(context.Background(), []string{"pie"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownStep)
}

func TestPipelineUnwritableOutput(t *testing.T) {
	// A regular file where the output directory should be
	dir := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(dir, []byte("x"), 0644))

	logger, logs := testutil.NewTestLogger(t)
	p := newTestPipeline(t, scenarioRows, dir, StepOptions{TopDeals: 10, RootLabel: "Root"})
	p.logger = logger

	result, err := p.Run(context.Background(), nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	assert.Len(t, result.Report.FailedSteps(), len(domain.Documents()))
	assert.Equal(t, RunStatusFailed, result.Report.Status)
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "Failed to create output directory")
}

func TestDocumentStepBuildFailure(t *testing.T) {
	dir := t.TempDir()
	step := NewDocumentStep(domain.DocumentSankey, "Capital Flow Sankey", func([]domain.Deal) (interface{}, error) {
		return nil, errors.New("link 0: source index 3 out of range")
	}, exporter.NewDocumentWriter(dir, nil))

	state := NewRunState("run", nil)
	state.AddStep(step)
	err := step.Execute(context.Background(), state)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeAggregation))
	assert.NoFileExists(t, filepath.Join(dir, domain.DocumentSankey.FileName()))
}

func TestNewPipelineFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	cfg.Output.EnrichedParquet = false

	p, err := NewPipelineFromConfig(cfg, nil, nil)
	require.NoError(t, err)

	ids := p.Manager().GetRegistry().ListIDs()
	assert.Len(t, ids, len(domain.Documents())+1)
	assert.Contains(t, ids, StepEnrichedCSV)
	assert.NotContains(t, ids, StepEnrichedParquet)
}

func TestPipelineNonFiniteTicketColumn(t *testing.T) {
	dir := t.TempDir()
	rows := dataprocessing.SliceSource{
		{Row: 2, DealName: "Clinic A", Segment: "DFI", MappedSector: "Health", TicketRaw: "2", TicketUSD: "Inf", Country: "Zambia", InstrumentType: "Debt", Year: 2021},
		{Row: 3, DealName: "Lodge", Segment: "Fund", MappedSector: "Tourism", TicketRaw: "5", TicketUSD: "-Infinity", Country: "Kenya", InstrumentType: "Equity", Year: 2022},
	}
	p := newTestPipeline(t, rows, dir, StepOptions{TopDeals: 10, RootLabel: "Root"})

	result, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Report.FailedSteps())

	var country []domain.CountryTotal
	readDocument(t, dir, domain.DocumentCountry, &country)
	require.Len(t, country, 2)

	var top []domain.TopDeal
	readDocument(t, dir, domain.DocumentTopDeals, &top)
	require.Len(t, top, 2)
	assert.Equal(t, "Lodge", top[0].Name)
	assert.Equal(t, 5.0, top[0].TicketSize)
}

