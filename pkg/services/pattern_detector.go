package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/models"
)

// PatternDetector runs the irregularity rule set over a contract set.
// Each rule is an independent signal: findings are concatenated with no
// cross-rule suppression, so one contract can surface more than once.
type PatternDetector interface {
	Analyze(contracts []*models.Contract) []models.Finding
}

type patternDetector struct {
	cfg    DetectorConfig
	logger *zap.Logger
}

// NewPatternDetector creates a PatternDetector with the given tuning.
func NewPatternDetector(cfg DetectorConfig, logger *zap.Logger) PatternDetector {
	return &patternDetector{
		cfg:    cfg,
		logger: logger.Named("pattern_detector"),
	}
}

var _ PatternDetector = (*patternDetector)(nil)

func (d *patternDetector) Analyze(contracts []*models.Contract) []models.Finding {
	var findings []models.Finding

	if d.cfg.NearThreshold.Enabled {
		findings = append(findings, d.detectNearThreshold(contracts)...)
	}
	if d.cfg.Splitting.Enabled {
		findings = append(findings, d.detectSplitting(contracts)...)
	}
	if d.cfg.RepeatedPair.Enabled {
		findings = append(findings, d.detectRepeatedPairs(contracts)...)
	}
	if d.cfg.TemporalCluster.Enabled {
		findings = append(findings, d.detectTemporalCluster(contracts)...)
	}
	if d.cfg.EngineeredValue.Enabled {
		findings = append(findings, d.detectEngineeredValues(contracts)...)
	}
	if d.cfg.ProcedureMismatch.Enabled {
		findings = append(findings, d.detectProcedureMismatch(contracts)...)
	}
	if d.cfg.SuspiciousTiming.Enabled {
		findings = append(findings, d.detectSuspiciousTiming(contracts)...)
	}

	d.logger.Info("pattern analysis complete",
		zap.Int("contracts", len(contracts)),
		zap.Int("findings", len(findings)))
	return findings
}

// Rule 1: values strategically just below the direct award ceiling.
func (d *patternDetector) detectNearThreshold(contracts []*models.Contract) []models.Finding {
	var findings []models.Finding

	for _, c := range contracts {
		if c.Value <= 0 {
			continue
		}

		ceiling := models.DirectAwardCeiling(c.Category)
		margin := ceiling * d.cfg.NearThreshold.SuspiciousMarginPct / 100
		highMargin := ceiling * d.cfg.NearThreshold.HighMarginPct / 100

		if c.Value < ceiling-margin || c.Value > ceiling {
			continue
		}

		distance := ceiling - c.Value
		pctBelow := distance / ceiling * 100

		severity := models.SeverityMedium
		if distance <= highMargin {
			severity = models.SeverityHigh
		}
		if strings.Contains(strings.ToLower(c.Procedure), "ajuste") {
			severity = models.SeverityHigh
		}

		findings = append(findings, models.Finding{
			Kind:     models.FindingNearThreshold,
			Severity: severity,
			Description: fmt.Sprintf(
				"value %.2f is %.2f (%.2f%%) below the direct award ceiling of %.0f",
				c.Value, distance, pctBelow, ceiling),
			ContractIDs:  []string{c.ID},
			Awarder:      c.Awarder,
			Awardee:      c.Awardee,
			Value:        c.Value,
			Ceiling:      ceiling,
			Distance:     distance,
			PercentBelow: pctBelow,
		})
	}

	return findings
}

type splittingKey struct {
	awarder  string
	awardee  string
	category string
	object   string
}

// Rule 2: contract splitting, a larger award artificially divided into
// smaller ones to stay under the direct award ceiling.
func (d *patternDetector) detectSplitting(contracts []*models.Contract) []models.Finding {
	groups := make(map[splittingKey][]*models.Contract)
	for _, c := range contracts {
		key := splittingKey{
			awarder:  c.Awarder,
			awardee:  c.Awardee,
			category: c.Category,
			object:   truncateRunes(c.Object, 50),
		}
		groups[key] = append(groups[key], c)
	}

	keys := make([]splittingKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.awarder != b.awarder {
			return a.awarder < b.awarder
		}
		if a.awardee != b.awardee {
			return a.awardee < b.awardee
		}
		if a.category != b.category {
			return a.category < b.category
		}
		return a.object < b.object
	})

	var findings []models.Finding
	window := time.Duration(d.cfg.Splitting.WindowDays) * 24 * time.Hour

	for _, key := range keys {
		group := groups[key]
		if len(group) < d.cfg.Splitting.MinContracts {
			continue
		}

		sortByDate(group)

		for i, start := range group {
			if start.ContractDate == nil {
				continue
			}
			end := start.ContractDate.Add(window)

			var inWindow []*models.Contract
			for _, c := range group[i:] {
				if c.ContractDate != nil && !c.ContractDate.After(end) {
					inWindow = append(inWindow, c)
				}
			}
			if len(inWindow) < d.cfg.Splitting.MinContracts {
				continue
			}

			total := 0.0
			ids := make([]string, 0, len(inWindow))
			for _, c := range inWindow {
				total += c.Value
				ids = append(ids, c.ID)
			}
			ceiling := models.DirectAwardCeiling(inWindow[0].Category)
			if total <= ceiling {
				continue
			}

			findings = append(findings, models.Finding{
				Kind:     models.FindingSplitting,
				Severity: models.SeverityHigh,
				Description: fmt.Sprintf(
					"possible splitting: %d contracts in %d days totaling %.2f (ceiling %.0f)",
					len(inWindow), d.cfg.Splitting.WindowDays, total, ceiling),
				ContractIDs:   ids,
				Awarder:       key.awarder,
				Awardee:       key.awardee,
				ContractCount: len(inWindow),
				TotalValue:    total,
				Ceiling:       ceiling,
				WindowDays:    d.cfg.Splitting.WindowDays,
			})
			break // one finding per group
		}
	}

	return findings
}

type pairKey struct {
	awarder string
	awardee string
}

// Rule 3: excessive repetition of awards between the same two entities.
func (d *patternDetector) detectRepeatedPairs(contracts []*models.Contract) []models.Finding {
	groups := make(map[pairKey][]*models.Contract)
	for _, c := range contracts {
		key := pairKey{awarder: c.Awarder, awardee: c.Awardee}
		groups[key] = append(groups[key], c)
	}

	keys := make([]pairKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].awarder != keys[j].awarder {
			return keys[i].awarder < keys[j].awarder
		}
		return keys[i].awardee < keys[j].awardee
	})

	var findings []models.Finding
	for _, key := range keys {
		group := groups[key]
		if len(group) < d.cfg.RepeatedPair.MinContracts {
			continue
		}

		total := 0.0
		ids := make([]string, 0, len(group))
		for _, c := range group {
			total += c.Value
			ids = append(ids, c.ID)
		}

		findings = append(findings, models.Finding{
			Kind:     models.FindingRepeatedPair,
			Severity: models.SeverityMedium,
			Description: fmt.Sprintf(
				"%d contracts between %s and %s totaling %.2f",
				len(group), key.awarder, key.awardee, total),
			ContractIDs:   ids,
			Awarder:       key.awarder,
			Awardee:       key.awardee,
			ContractCount: len(group),
			TotalValue:    total,
		})
	}

	return findings
}

// Rule 4: abnormal concentration of awards in a short period. Only the
// first qualifying window is reported.
func (d *patternDetector) detectTemporalCluster(contracts []*models.Contract) []models.Finding {
	dated := make([]*models.Contract, 0, len(contracts))
	for _, c := range contracts {
		if c.ContractDate != nil {
			dated = append(dated, c)
		}
	}
	if len(dated) == 0 {
		return nil
	}
	sortByDate(dated)

	window := time.Duration(d.cfg.TemporalCluster.WindowDays) * 24 * time.Hour

	for i, start := range dated {
		end := start.ContractDate.Add(window)

		var inWindow []*models.Contract
		for _, c := range dated[i:] {
			if !c.ContractDate.After(end) {
				inWindow = append(inWindow, c)
			}
		}
		if len(inWindow) < d.cfg.TemporalCluster.MinContracts {
			continue
		}

		total := 0.0
		ids := make([]string, 0, len(inWindow))
		for _, c := range inWindow {
			total += c.Value
			ids = append(ids, c.ID)
		}

		return []models.Finding{{
			Kind:     models.FindingTemporalCluster,
			Severity: models.SeverityMedium,
			Description: fmt.Sprintf(
				"%d contracts within %d days starting %s (total %.2f)",
				len(inWindow), d.cfg.TemporalCluster.WindowDays,
				start.ContractDate.Format("2006-01-02"), total),
			ContractIDs:   ids,
			ContractCount: len(inWindow),
			TotalValue:    total,
			WindowDays:    d.cfg.TemporalCluster.WindowDays,
			Date:          start.ContractDate.Format("2006-01-02"),
		}}
	}

	return nil
}

// Rule 5: values that look hand-picked to dodge a ceiling, either by exact
// membership in the configured list or by landing a telltale 1/10/50/100
// short of a ceiling.
func (d *patternDetector) detectEngineeredValues(contracts []*models.Contract) []models.Finding {
	ceilings := []float64{75_000, 150_000, 214_000, 548_000}

	var findings []models.Finding
	for _, c := range contracts {
		for _, v := range d.cfg.EngineeredValue.Values {
			if c.Value == v {
				findings = append(findings, models.Finding{
					Kind:        models.FindingEngineeredValue,
					Severity:    models.SeverityHigh,
					Description: fmt.Sprintf("exact suspicious value %.2f", c.Value),
					ContractIDs: []string{c.ID},
					Awarder:     c.Awarder,
					Awardee:     c.Awardee,
					Value:       c.Value,
				})
				break
			}
		}

		for _, ceiling := range ceilings {
			if c.Value < ceiling-100 || c.Value >= ceiling {
				continue
			}
			diff := ceiling - c.Value
			if diff == 1 || diff == 10 || diff == 50 || diff == 100 {
				findings = append(findings, models.Finding{
					Kind:     models.FindingEngineeredValue,
					Severity: models.SeverityHigh,
					Description: fmt.Sprintf(
						"value %.2f appears calculated: %.0f below ceiling %.0f",
						c.Value, diff, ceiling),
					ContractIDs: []string{c.ID},
					Awarder:     c.Awarder,
					Awardee:     c.Awardee,
					Value:       c.Value,
					Ceiling:     ceiling,
					Distance:    diff,
				})
			}
		}
	}

	return findings
}

// Rule 6: procedure type incompatible with the contract value.
func (d *patternDetector) detectProcedureMismatch(contracts []*models.Contract) []models.Finding {
	var findings []models.Finding

	for _, c := range contracts {
		procedure := strings.ToLower(c.Procedure)
		if c.Value <= 0 || procedure == "" {
			continue
		}

		directCeiling := models.DirectAwardCeiling(c.Category)
		consultCeiling := models.PriorConsultationCeiling(c.Category)

		if strings.Contains(procedure, "ajuste") && c.Value > directCeiling {
			findings = append(findings, models.Finding{
				Kind:     models.FindingProcedureMismatch,
				Severity: models.SeverityHigh,
				Description: fmt.Sprintf(
					"direct award of %.2f exceeds the legal ceiling of %.0f",
					c.Value, directCeiling),
				ContractIDs: []string{c.ID},
				Awarder:     c.Awarder,
				Awardee:     c.Awardee,
				Value:       c.Value,
				Ceiling:     directCeiling,
			})
		}

		if strings.Contains(procedure, "consulta") && c.Value > consultCeiling {
			findings = append(findings, models.Finding{
				Kind:     models.FindingProcedureMismatch,
				Severity: models.SeverityHigh,
				Description: fmt.Sprintf(
					"prior consultation of %.2f exceeds the legal ceiling of %.0f, should have been a public tender",
					c.Value, consultCeiling),
				ContractIDs: []string{c.ID},
				Awarder:     c.Awarder,
				Awardee:     c.Awardee,
				Value:       c.Value,
				Ceiling:     consultCeiling,
			})
		}
	}

	return findings
}

// Rule 7: publication on a Friday or a national holiday, when scrutiny
// is lowest.
func (d *patternDetector) detectSuspiciousTiming(contracts []*models.Contract) []models.Finding {
	holidays := make(map[string]bool, len(d.cfg.SuspiciousTiming.HolidayMonthDays))
	for _, md := range d.cfg.SuspiciousTiming.HolidayMonthDays {
		holidays[md] = true
	}

	var findings []models.Finding
	for _, c := range contracts {
		date := c.PublishedDate
		if date == nil {
			date = c.ContractDate
		}
		if date == nil {
			continue
		}

		day := *date
		if day.Weekday() == time.Friday {
			findings = append(findings, models.Finding{
				Kind:        models.FindingSuspiciousTiming,
				Severity:    models.SeverityLow,
				Description: fmt.Sprintf("published on a Friday (%s)", day.Format("2006-01-02")),
				ContractIDs: []string{c.ID},
				Awarder:     c.Awarder,
				Awardee:     c.Awardee,
				Date:        day.Format("2006-01-02"),
			})
		}

		if holidays[day.Format("01-02")] {
			findings = append(findings, models.Finding{
				Kind:        models.FindingSuspiciousTiming,
				Severity:    models.SeverityMedium,
				Description: fmt.Sprintf("published on a national holiday (%s)", day.Format("2006-01-02")),
				ContractIDs: []string{c.ID},
				Awarder:     c.Awarder,
				Awardee:     c.Awardee,
				Date:        day.Format("2006-01-02"),
			})
		}
	}

	return findings
}

func sortByDate(contracts []*models.Contract) {
	sort.SliceStable(contracts, func(i, j int) bool {
		a, b := contracts[i].ContractDate, contracts[j].ContractDate
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
