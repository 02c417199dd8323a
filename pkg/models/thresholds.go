package models

import "strings"

// Category buckets used by the threshold model.
const (
	CategoryWorks         = "works"
	CategoryGoodsServices = "goods_services"
)

// Procurement value ceilings from the Portuguese public contracts code
// (Código dos Contratos Públicos, 2024 values) plus the EU directive
// thresholds for cross-border relevance.
const (
	DirectAwardCeilingGoodsServices       = 75_000.0
	DirectAwardCeilingWorks               = 150_000.0
	PriorConsultationCeilingGoodsServices = 214_000.0
	PriorConsultationCeilingWorks         = 548_000.0
	EUCeilingGoodsServices                = 140_000.0
	EUCeilingWorks                        = 5_382_000.0
)

// worksKeywords classify a free-text contract type label as public works.
// The BASE portal labels works contracts "Empreitadas de obras públicas".
var worksKeywords = []string{"obra", "empreitada"}

// ClassifyCategory buckets a free-text contract type label into works or
// goods/services.
func ClassifyCategory(label string) string {
	lower := strings.ToLower(label)
	for _, kw := range worksKeywords {
		if strings.Contains(lower, kw) {
			return CategoryWorks
		}
	}
	return CategoryGoodsServices
}

// DirectAwardCeiling returns the direct-award ceiling applicable to the given
// free-text contract type label.
func DirectAwardCeiling(label string) float64 {
	if ClassifyCategory(label) == CategoryWorks {
		return DirectAwardCeilingWorks
	}
	return DirectAwardCeilingGoodsServices
}

// PriorConsultationCeiling returns the prior-consultation ceiling applicable
// to the given free-text contract type label. Values above it require a
// public tender.
func PriorConsultationCeiling(label string) float64 {
	if ClassifyCategory(label) == CategoryWorks {
		return PriorConsultationCeilingWorks
	}
	return PriorConsultationCeilingGoodsServices
}

// LegalThreshold is one row of the threshold table, exposed for display.
type LegalThreshold struct {
	Category                 string  `json:"category"`
	DirectAwardCeiling       float64 `json:"direct_award_ceiling"`
	PriorConsultationCeiling float64 `json:"prior_consultation_ceiling"`
	PublicTenderFloor        float64 `json:"public_tender_floor"`
	EUCeiling                float64 `json:"eu_ceiling"`
}

// ThresholdTable returns the full threshold table, one row per category.
func ThresholdTable() []LegalThreshold {
	return []LegalThreshold{
		{
			Category:                 CategoryGoodsServices,
			DirectAwardCeiling:       DirectAwardCeilingGoodsServices,
			PriorConsultationCeiling: PriorConsultationCeilingGoodsServices,
			PublicTenderFloor:        PriorConsultationCeilingGoodsServices,
			EUCeiling:                EUCeilingGoodsServices,
		},
		{
			Category:                 CategoryWorks,
			DirectAwardCeiling:       DirectAwardCeilingWorks,
			PriorConsultationCeiling: PriorConsultationCeilingWorks,
			PublicTenderFloor:        PriorConsultationCeilingWorks,
			EUCeiling:                EUCeilingWorks,
		},
	}
}
