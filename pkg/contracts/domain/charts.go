package domain

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// Document identifies one dashboard document produced by the pipeline
type Document string

const (
	DocumentSankey             Document = "sankey"
	DocumentTreemap            Document = "treemap"
	DocumentSectoral           Document = "sectoral"
	DocumentSDG                Document = "sdg"
	DocumentCapitalSource      Document = "capital_source"
	DocumentInstrumentTimeline Document = "instrument_timeline"
	DocumentTopDeals           Document = "top_deals"
	DocumentCountry            Document = "country"
)

var documentFiles = map[Document]string{
	DocumentSankey:             "sankey_data.json",
	DocumentTreemap:            "treemap_data.json",
	DocumentSectoral:           "sectoral_data.json",
	DocumentSDG:                "sdg_data.json",
	DocumentCapitalSource:      "capital_source_data.json",
	DocumentInstrumentTimeline: "instrument_timeline.json",
	DocumentTopDeals:           "top_deals.json",
	DocumentCountry:            "country_data.json",
}

// Documents returns every dashboard document in emission order
func Documents() []Document {
	return []Document{
		DocumentSankey,
		DocumentTreemap,
		DocumentSectoral,
		DocumentSDG,
		DocumentCapitalSource,
		DocumentInstrumentTimeline,
		DocumentTopDeals,
		DocumentCountry,
	}
}

// FileName returns the file the document is written to, or "" for an unknown document
func (d Document) FileName() string {
	return documentFiles[d]
}

// IsValid reports whether d names a known document
func (d Document) IsValid() bool {
	_, ok := documentFiles[d]
	return ok
}

// SankeyNode is one labelled node of the capital flow diagram
type SankeyNode struct {
	Name string `json:"name"`
}

// SankeyLink connects two nodes by index
type SankeyLink struct {
	Source    int     `json:"source"`
	Target    int     `json:"target"`
	Value     float64 `json:"value"`
	DealCount int     `json:"deal_count"`
}

// SankeyData is the capital flow document (segment -> sector)
type SankeyData struct {
	Nodes []SankeyNode `json:"nodes"`
	Links []SankeyLink `json:"links"`
}

// TreemapLeaf is a sector within an investor
type TreemapLeaf struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	DealCount int     `json:"deal_count"`
}

// TreemapInvestor groups the sectors an investor has backed
type TreemapInvestor struct {
	Name     string        `json:"name"`
	Children []TreemapLeaf `json:"children"`
}

// TreemapSegment groups investors of one segment
type TreemapSegment struct {
	Name     string            `json:"name"`
	Children []TreemapInvestor `json:"children"`
}

// TreemapData is the market size hierarchy document
type TreemapData struct {
	Name     string           `json:"name"`
	Children []TreemapSegment `json:"children"`
}

// SectoralYear holds parallel sector arrays for a single year
type SectoralYear struct {
	Sectors []string  `json:"sectors"`
	Values  []float64 `json:"values"`
	Counts  []int     `json:"counts"`
}

// SectoralBreakdown maps a year to its sector totals. It marshals to an object
// keyed by the decimal year with keys in ascending order.
type SectoralBreakdown map[int]SectoralYear

// Years returns the years present in ascending order
func (s SectoralBreakdown) Years() []int {
	years := make([]int, 0, len(s))
	for year := range s {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// MarshalJSON implements json.Marshaler
func (s SectoralBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, year := range s.Years() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(year)))
		buf.WriteByte(':')
		entry, err := json.Marshal(s[year])
		if err != nil {
			return nil, err
		}
		buf.Write(entry)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SDGTotal is the investment attributed to one Sustainable Development Goal
type SDGTotal struct {
	SDG             int     `json:"sdg"`
	TotalInvestment float64 `json:"total_investment"`
	DealCount       int     `json:"deal_count"`
	Name            string  `json:"name"`
}

// CapitalSourceSummary totals deals for one capital source
type CapitalSourceSummary struct {
	Source     CapitalSource `json:"source"`
	TotalValue float64       `json:"total_value"`
	DealCount  int           `json:"deal_count"`
}

// CapitalSourceByType totals tickets for one (source, segment) pair
type CapitalSourceByType struct {
	Source    CapitalSource `json:"source"`
	Segment   string        `json:"segment"`
	TicketSum float64       `json:"ticket_sum"`
}

// CapitalSourceData is the domestic vs international comparison document
type CapitalSourceData struct {
	Summary []CapitalSourceSummary `json:"summary"`
	ByType  []CapitalSourceByType  `json:"by_type"`
}

// InstrumentPoint is one (year, instrument) total of the timeline
type InstrumentPoint struct {
	Year       int     `json:"year"`
	Instrument string  `json:"instrument"`
	Value      float64 `json:"value"`
	Count      int     `json:"count"`
}

// TopDeal is a publicly listable deal
type TopDeal struct {
	Name       string  `json:"name"`
	Investor   string  `json:"investor"`
	Sector     string  `json:"sector"`
	Year       int     `json:"year"`
	TicketSize float64 `json:"ticket_size"`
	Instrument string  `json:"instrument"`
	SDGs       []int   `json:"sdgs"`
	Details    string  `json:"details"`
	Segment    string  `json:"segment"`
}

// CountryTotal is the investment originating from one country
type CountryTotal struct {
	Country         string  `json:"country"`
	TotalInvestment float64 `json:"total_investment"`
	DealCount       int     `json:"deal_count"`
}
