package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/models"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func contract(id string, value float64) *models.Contract {
	return &models.Contract{
		ID:       id,
		Awarder:  "Câmara Municipal de Lisboa",
		Awardee:  "Fornecedor Exemplo Lda",
		Value:    value,
		Category: "Aquisição de serviços",
	}
}

func findingsOfKind(findings []models.Finding, kind string) []models.Finding {
	var out []models.Finding
	for _, f := range findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func newTestDetector() PatternDetector {
	return NewPatternDetector(DefaultDetectorConfig(), zap.NewNop())
}

func TestNearThreshold_JustBelowCeiling(t *testing.T) {
	d := newTestDetector()

	findings := d.Analyze([]*models.Contract{contract("C1", 74_999)})

	near := findingsOfKind(findings, models.FindingNearThreshold)
	require.Len(t, near, 1)
	assert.Equal(t, models.SeverityHigh, near[0].Severity)
	assert.Equal(t, 75_000.0, near[0].Ceiling)
	assert.Equal(t, 1.0, near[0].Distance)
	assert.Equal(t, []string{"C1"}, near[0].ContractIDs)
}

func TestNearThreshold_FarBelowCeilingIsClean(t *testing.T) {
	d := newTestDetector()

	findings := d.Analyze([]*models.Contract{contract("C1", 50_000)})

	assert.Empty(t, findingsOfKind(findings, models.FindingNearThreshold))
}

func TestNearThreshold_WorksCategoryUsesWorksCeiling(t *testing.T) {
	d := newTestDetector()
	c := contract("C1", 149_500)
	c.Category = "Empreitada de obras públicas"

	findings := d.Analyze([]*models.Contract{c})

	near := findingsOfKind(findings, models.FindingNearThreshold)
	require.Len(t, near, 1)
	assert.Equal(t, 150_000.0, near[0].Ceiling)
	assert.Equal(t, models.SeverityHigh, near[0].Severity)
}

func TestNearThreshold_MediumOutsideHighMargin(t *testing.T) {
	d := newTestDetector()

	// 72 000 is within 5% of 75 000 but outside the 1% band.
	findings := d.Analyze([]*models.Contract{contract("C1", 72_000)})

	near := findingsOfKind(findings, models.FindingNearThreshold)
	require.Len(t, near, 1)
	assert.Equal(t, models.SeverityMedium, near[0].Severity)
}

func TestNearThreshold_DirectAwardProcedureEscalates(t *testing.T) {
	d := newTestDetector()
	c := contract("C1", 72_000)
	c.Procedure = "Ajuste Direto"

	findings := d.Analyze([]*models.Contract{c})

	near := findingsOfKind(findings, models.FindingNearThreshold)
	require.Len(t, near, 1)
	assert.Equal(t, models.SeverityHigh, near[0].Severity)
}

func TestEngineeredValue_FiresAlongsideNearThreshold(t *testing.T) {
	d := newTestDetector()

	findings := d.Analyze([]*models.Contract{contract("C1", 74_999)})

	// The same contract surfaces under both rules; no deduplication.
	assert.Len(t, findingsOfKind(findings, models.FindingNearThreshold), 1)
	engineered := findingsOfKind(findings, models.FindingEngineeredValue)
	require.NotEmpty(t, engineered)
	for _, f := range engineered {
		assert.Equal(t, models.SeverityHigh, f.Severity)
	}
}

func TestEngineeredValue_CalculatedShortfall(t *testing.T) {
	d := newTestDetector()

	// 213 950 is not in the exact list but sits 50 below the 214 000 ceiling.
	findings := d.Analyze([]*models.Contract{contract("C1", 213_950)})

	engineered := findingsOfKind(findings, models.FindingEngineeredValue)
	require.NotEmpty(t, engineered)
	assert.Equal(t, 50.0, engineered[len(engineered)-1].Distance)
}

func TestEngineeredValue_RoundValueIsClean(t *testing.T) {
	d := newTestDetector()

	findings := d.Analyze([]*models.Contract{contract("C1", 60_000)})

	assert.Empty(t, findingsOfKind(findings, models.FindingEngineeredValue))
}

func TestRepeatedPair_FiveContractsYieldOneFinding(t *testing.T) {
	d := newTestDetector()

	var contracts []*models.Contract
	for i := 0; i < 5; i++ {
		contracts = append(contracts, contract(fmt.Sprintf("C%d", i), 10_000))
	}

	findings := d.Analyze(contracts)

	repeated := findingsOfKind(findings, models.FindingRepeatedPair)
	require.Len(t, repeated, 1)
	assert.Equal(t, 5, repeated[0].ContractCount)
	assert.Equal(t, 50_000.0, repeated[0].TotalValue)
	assert.Equal(t, models.SeverityMedium, repeated[0].Severity)
}

func TestRepeatedPair_FourContractsAreClean(t *testing.T) {
	d := newTestDetector()

	var contracts []*models.Contract
	for i := 0; i < 4; i++ {
		contracts = append(contracts, contract(fmt.Sprintf("C%d", i), 10_000))
	}

	findings := d.Analyze(contracts)

	assert.Empty(t, findingsOfKind(findings, models.FindingRepeatedPair))
}

func TestSplitting_SumOverCeilingInWindow(t *testing.T) {
	d := newTestDetector()

	var contracts []*models.Contract
	for i := 0; i < 3; i++ {
		c := contract(fmt.Sprintf("C%d", i), 30_000)
		c.Object = "Fornecimento de material de escritório"
		c.ContractDate = date(fmt.Sprintf("2024-0%d-15", i+1))
		contracts = append(contracts, c)
	}

	findings := d.Analyze(contracts)

	split := findingsOfKind(findings, models.FindingSplitting)
	require.Len(t, split, 1)
	assert.Equal(t, 3, split[0].ContractCount)
	assert.Equal(t, 90_000.0, split[0].TotalValue)
	assert.Equal(t, models.SeverityHigh, split[0].Severity)
	assert.Len(t, split[0].ContractIDs, 3)
}

func TestSplitting_UnderCeilingTotalIsClean(t *testing.T) {
	d := newTestDetector()

	var contracts []*models.Contract
	for i := 0; i < 3; i++ {
		c := contract(fmt.Sprintf("C%d", i), 10_000)
		c.Object = "Fornecimento de material de escritório"
		c.ContractDate = date(fmt.Sprintf("2024-0%d-15", i+1))
		contracts = append(contracts, c)
	}

	findings := d.Analyze(contracts)

	assert.Empty(t, findingsOfKind(findings, models.FindingSplitting))
}

func TestSplitting_DifferentObjectsAreSeparateGroups(t *testing.T) {
	d := newTestDetector()

	var contracts []*models.Contract
	for i := 0; i < 3; i++ {
		c := contract(fmt.Sprintf("C%d", i), 30_000)
		c.Object = fmt.Sprintf("Objeto completamente distinto numero %d", i)
		c.ContractDate = date(fmt.Sprintf("2024-0%d-15", i+1))
		contracts = append(contracts, c)
	}

	findings := d.Analyze(contracts)

	assert.Empty(t, findingsOfKind(findings, models.FindingSplitting))
}

func TestTemporalCluster_ReportsFirstWindowOnly(t *testing.T) {
	d := newTestDetector()

	var contracts []*models.Contract
	for i := 0; i < 12; i++ {
		c := contract(fmt.Sprintf("C%d", i), 5_000)
		c.ContractDate = date(fmt.Sprintf("2024-03-%02d", i+1))
		contracts = append(contracts, c)
	}

	findings := d.Analyze(contracts)

	cluster := findingsOfKind(findings, models.FindingTemporalCluster)
	require.Len(t, cluster, 1)
	assert.Equal(t, 12, cluster[0].ContractCount)
	assert.Equal(t, "2024-03-01", cluster[0].Date)
}

func TestTemporalCluster_SparseDatesAreClean(t *testing.T) {
	d := newTestDetector()

	var contracts []*models.Contract
	for i := 0; i < 12; i++ {
		c := contract(fmt.Sprintf("C%d", i), 5_000)
		c.ContractDate = date(fmt.Sprintf("2024-%02d-01", i%12+1))
		contracts = append(contracts, c)
	}

	findings := d.Analyze(contracts)

	assert.Empty(t, findingsOfKind(findings, models.FindingTemporalCluster))
}

func TestProcedureMismatch_DirectAwardAboveCeiling(t *testing.T) {
	d := newTestDetector()
	c := contract("C1", 100_000)
	c.Procedure = "Ajuste Direto"

	findings := d.Analyze([]*models.Contract{c})

	mismatch := findingsOfKind(findings, models.FindingProcedureMismatch)
	require.Len(t, mismatch, 1)
	assert.Equal(t, models.SeverityHigh, mismatch[0].Severity)
	assert.Equal(t, 75_000.0, mismatch[0].Ceiling)
}

func TestProcedureMismatch_PriorConsultationAboveCeiling(t *testing.T) {
	d := newTestDetector()
	c := contract("C1", 300_000)
	c.Procedure = "Consulta Prévia"

	findings := d.Analyze([]*models.Contract{c})

	mismatch := findingsOfKind(findings, models.FindingProcedureMismatch)
	require.Len(t, mismatch, 1)
	assert.Equal(t, 214_000.0, mismatch[0].Ceiling)
}

func TestProcedureMismatch_PublicTenderIsClean(t *testing.T) {
	d := newTestDetector()
	c := contract("C1", 1_000_000)
	c.Procedure = "Concurso Público"

	findings := d.Analyze([]*models.Contract{c})

	assert.Empty(t, findingsOfKind(findings, models.FindingProcedureMismatch))
}

func TestSuspiciousTiming_FridayPublication(t *testing.T) {
	d := newTestDetector()
	c := contract("C1", 20_000)
	c.PublishedDate = date("2024-03-01") // a Friday

	findings := d.Analyze([]*models.Contract{c})

	timing := findingsOfKind(findings, models.FindingSuspiciousTiming)
	require.Len(t, timing, 1)
	assert.Equal(t, models.SeverityLow, timing[0].Severity)
}

func TestSuspiciousTiming_HolidayPublication(t *testing.T) {
	d := newTestDetector()
	c := contract("C1", 20_000)
	c.PublishedDate = date("2024-04-25") // national holiday, a Thursday

	findings := d.Analyze([]*models.Contract{c})

	timing := findingsOfKind(findings, models.FindingSuspiciousTiming)
	require.Len(t, timing, 1)
	assert.Equal(t, models.SeverityMedium, timing[0].Severity)
}

func TestSuspiciousTiming_FallsBackToContractDate(t *testing.T) {
	d := newTestDetector()
	c := contract("C1", 20_000)
	c.ContractDate = date("2024-12-25")

	findings := d.Analyze([]*models.Contract{c})

	assert.Len(t, findingsOfKind(findings, models.FindingSuspiciousTiming), 1)
}

func TestAnalyze_MissingDatesAreSkippedNotFatal(t *testing.T) {
	d := newTestDetector()
	c := contract("C1", 20_000) // no dates at all

	assert.NotPanics(t, func() {
		d.Analyze([]*models.Contract{c})
	})
}

func TestAnalyze_DisabledRulesDoNotFire(t *testing.T) {
	cfg := DefaultDetectorConfig()
	cfg.NearThreshold.Enabled = false
	cfg.EngineeredValue.Enabled = false
	d := NewPatternDetector(cfg, zap.NewNop())

	findings := d.Analyze([]*models.Contract{contract("C1", 74_999)})

	assert.Empty(t, findings)
}

func TestAnalyze_ZeroValueContractsSkipped(t *testing.T) {
	d := newTestDetector()

	findings := d.Analyze([]*models.Contract{contract("C1", 0)})

	assert.Empty(t, findingsOfKind(findings, models.FindingNearThreshold))
	assert.Empty(t, findingsOfKind(findings, models.FindingProcedureMismatch))
}
