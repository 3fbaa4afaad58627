package domain

// CapitalSource classifies where a deal's capital originates relative to the home country
type CapitalSource string

const (
	CapitalSourceDomestic      CapitalSource = "Domestic"
	CapitalSourceInternational CapitalSource = "International"
	CapitalSourceUnknown       CapitalSource = "Unknown"
)

// RawDeal is one row of the deal sheet as read from the source. Empty strings
// stand for empty cells; Year is 0 when the cell is empty or not numeric.
type RawDeal struct {
	Row            int    `json:"row"`
	DealName       string `json:"deal_name"`
	Investor       string `json:"investor"`
	Segment        string `json:"segment"`
	RawSector      string `json:"raw_sector"`
	MappedSector   string `json:"mapped_sector"`
	TicketRaw      string `json:"ticket_raw"`
	TicketUSD      string `json:"ticket_usd"`
	SDGText        string `json:"sdg_text"`
	Country        string `json:"country"`
	Anonymized     bool   `json:"anonymized"`
	InstrumentType string `json:"instrument_type"`
	Year           int    `json:"year"`
	Details        string `json:"details"`
}

// Deal represents an enriched deal record. Deals are never mutated after enrichment.
type Deal struct {
	Row                   int           `json:"row"`
	DealName              string        `json:"deal_name"`
	Investor              string        `json:"investor"`
	Segment               string        `json:"segment"`
	RawSector             string        `json:"raw_sector"`
	MappedSector          string        `json:"mapped_sector"`
	TicketSizeRaw         string        `json:"ticket_size_raw"`
	TicketSizeUSDMillions *float64      `json:"ticket_size_usd_millions"`
	HasDisclosedAmount    bool          `json:"has_disclosed_amount"`
	Anonymized            bool          `json:"anonymized"`
	SDGTags               []int         `json:"sdg_tags"`
	CountryOfOrigin       string        `json:"country_of_origin"`
	CapitalSource         CapitalSource `json:"capital_source"`
	InstrumentType        string        `json:"instrument_type"`
	Year                  int           `json:"year"`
	Details               string        `json:"details"`
}

// ShowIndividual reports whether the deal may be listed on its own.
// It is derived on every call so it can never drift from its inputs.
func (d Deal) ShowIndividual() bool {
	return !d.Anonymized && d.HasDisclosedAmount
}

// Ticket returns the ticket size in USD millions, or 0 when unknown.
func (d Deal) Ticket() float64 {
	if d.TicketSizeUSDMillions == nil {
		return 0
	}
	return *d.TicketSizeUSDMillions
}

// HasTicket reports whether a numeric ticket size is known
func (d Deal) HasTicket() bool {
	return d.TicketSizeUSDMillions != nil
}

// HasYear reports whether the deal year is known
func (d Deal) HasYear() bool {
	return d.Year > 0
}

// Float64Ptr returns a pointer to v
func Float64Ptr(v float64) *float64 {
	return &v
}
