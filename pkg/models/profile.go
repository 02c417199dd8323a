package models

// CounterpartyCount is a counterparty ranked by number of shared contracts.
type CounterpartyCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// EntityProfile summarizes every contract a watched entity is involved in.
type EntityProfile struct {
	Entity           *WatchedEntity      `json:"entity"`
	TotalContracts   int                 `json:"total_contracts"`
	TotalValue       float64             `json:"total_value"`
	AsAwarder        int                 `json:"as_awarder"`
	AsAwardee        int                 `json:"as_awardee"`
	TopCounterparts  []CounterpartyCount `json:"top_counterparties"`
	ContractsByYear  map[string]int      `json:"contracts_by_year"`
	ContractsByType  map[string]int      `json:"contracts_by_type"`
	RecentContracts  []*Contract         `json:"recent_contracts"`
}

// AnnotatedContract is a contract reached through an association, tagged with
// the company it was found through and the person's relation to that company.
type AnnotatedContract struct {
	*Contract
	ViaCompany string `json:"via_company"`
	Relation   string `json:"relation"`
}

// ExpansionResult is the output of the person-centric search: the person's
// direct contracts unioned with the contracts of every associated company.
type ExpansionResult struct {
	PersonName          string              `json:"person_name"`
	Person              *Person             `json:"person,omitempty"`
	DirectContracts     []*Contract         `json:"direct_contracts"`
	AssociatedCompanies []string            `json:"associated_companies"`
	CompanyContracts    []AnnotatedContract `json:"company_contracts"`
	TotalContracts      int                 `json:"total_contracts"`
	TotalValue          float64             `json:"total_value"`
}

// YearCount is a per-year contract tally.
type YearCount struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}

// RepositoryStats summarizes the contract store for the stats endpoint.
type RepositoryStats struct {
	TotalContracts  int         `json:"total_contracts"`
	TotalValue      float64     `json:"total_value"`
	WatchedEntities int         `json:"watched_entities"`
	UnreadAlerts    int         `json:"unread_alerts"`
	ContractsByYear []YearCount `json:"contracts_by_year"`
}
