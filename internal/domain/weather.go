package domain

import "strconv"

// DefaultCountry is the root key of the persisted forecast tree.
const DefaultCountry = "日本"

// Weather is one region's forecast for one day.
type Weather struct {
	Date         LocalDate
	Type         string  // condition label from the icon alt text
	HighestTemp  float64 // may be NaN when the page text is not a number
	LowestTemp   float64
	RainyPercent int
}

// Region holds the forecast records of one region row, ordered by day offset.
type Region struct {
	Name    string
	Weather []Weather
}

// Document is the persisted form of a Weather record.
// Value fields are text to match data already stored by earlier scrapers.
type Document struct {
	Country      string    `json:"country"`
	Region       string    `json:"region"`
	Date         LocalDate `json:"date"`
	Type         string    `json:"type"`
	HighestTemp  string    `json:"highestTemp"`
	LowestTemp   string    `json:"lowestTemp"`
	RainyPercent string    `json:"rainyPercent"`
}

// DateKey is the document key within its region, e.g. "2024-3-5".
func (d Document) DateKey() string {
	return d.Date.Format(DateFormatYYYYMMDD)
}

// NewDocument serializes w for storage under country and region.
func NewDocument(country, region string, w Weather) Document {
	return Document{
		Country:      country,
		Region:       region,
		Date:         w.Date,
		Type:         w.Type,
		HighestTemp:  FormatNumber(w.HighestTemp),
		LowestTemp:   FormatNumber(w.LowestTemp),
		RainyPercent: strconv.Itoa(w.RainyPercent),
	}
}

// Documents serializes every record of the region.
func (r Region) Documents(country string) []Document {
	docs := make([]Document, 0, len(r.Weather))
	for _, w := range r.Weather {
		docs = append(docs, NewDocument(country, r.Name, w))
	}
	return docs
}
