package config

import (
	"strings"

	"nabii/pkg/contracts"
)

// Application constants
const (
	AppName    = "nabii-dashboard"
	AppVersion = contracts.Version

	DefaultInputPath   = "NABII_Dataset_Mapped_Sectors.xlsx"
	DefaultOutputDir   = "data"
	DefaultLogFile     = "logs/nabii.log"
	DefaultHomeCountry = "Zambia"
	DefaultTopDeals    = 10
	DefaultRootLabel   = "Zambia Impact Investment"

	// CatchAllSector receives every sector that is neither mapped nor named
	CatchAllSector = "Manufacturing & Other"

	EnrichedCSVFile     = "enriched_deals.csv"
	EnrichedParquetFile = "enriched_deals.parquet"

	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"
)

// Deal sheet column names
const (
	ColumnDealName       = "Deal1_Name"
	ColumnInvestor       = "Investor"
	ColumnSegment        = "Segment"
	ColumnRawSector      = "Deal1_Sector"
	ColumnMappedSector   = "Mapped_Sector"
	ColumnTicket         = "Deal1_Ticket"
	ColumnTicketUSD      = "Deal1_Ticket USD"
	ColumnSDG            = "Deal1_SDG"
	ColumnCountry        = "Country of Origin"
	ColumnAnonymized     = "Anonymized"
	ColumnInstrumentType = "Instrument_Type"
	ColumnYear           = "Deal1_Year"
	ColumnDetails        = "Deal1_Investment Details"
)

// RequiredColumns must all be present in the deal sheet header
var RequiredColumns = []string{
	ColumnDealName,
	ColumnInvestor,
	ColumnSegment,
	ColumnRawSector,
	ColumnMappedSector,
	ColumnTicket,
	ColumnSDG,
	ColumnCountry,
	ColumnAnonymized,
	ColumnInstrumentType,
	ColumnYear,
}

// OptionalColumns are read when present
var OptionalColumns = []string{
	ColumnTicketUSD,
	ColumnDetails,
}

var sectorMapping = map[string]string{
	"Biopharmaceuticals": "Healthcare & Education",
	"Pharmaceuticals":    "Healthcare & Education",
	"Telecommunications": "Technology & Digital Services",
	"Tourism":            CatchAllSector,
}

var sdgNames = map[int]string{
	1:  "No Poverty",
	2:  "Zero Hunger",
	3:  "Good Health",
	4:  "Quality Education",
	5:  "Gender Equality",
	6:  "Clean Water",
	7:  "Clean Energy",
	8:  "Decent Work",
	9:  "Innovation",
	10: "Reduced Inequalities",
	11: "Sustainable Cities",
	12: "Responsible Consumption",
	13: "Climate Action",
	14: "Life Below Water",
	15: "Life on Land",
	16: "Peace & Justice",
	17: "Partnerships",
}

// UnknownSDGLabel is used for goal numbers outside 1..17
const UnknownSDGLabel = "Unknown"

var disclosurePlaceholders = map[string]struct{}{
	"undisclosed":   {},
	"not disclosed": {},
}

// MapSector returns the canonical sector for a raw sector label that has a
// fixed mapping.
func MapSector(raw string) (string, bool) {
	sector, ok := sectorMapping[raw]
	return sector, ok
}

// SDGName returns the short label of a Sustainable Development Goal
func SDGName(n int) string {
	if name, ok := sdgNames[n]; ok {
		return name
	}
	return UnknownSDGLabel
}

// IsDisclosurePlaceholder reports whether a ticket text only states that the
// amount is not public. Matching is case-insensitive after trimming.
func IsDisclosurePlaceholder(text string) bool {
	_, ok := disclosurePlaceholders[strings.ToLower(strings.TrimSpace(text))]
	return ok
}
