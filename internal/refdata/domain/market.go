package refdata

// MarketFamily groups the balancing products that are extracted together.
type MarketFamily string

const (
	FamilyTertiary    MarketFamily = "terciaria"
	FamilySecondary   MarketFamily = "secundaria"
	FamilyReplacement MarketFamily = "rr"
	FamilyCurtailment MarketFamily = "curtailment"
	FamilyGeneric     MarketFamily = "p48"
)

// Direction is the dispatch direction a market settles, using the raw
// values carried by the workbook's direction column.
type Direction string

const (
	DirectionUp   Direction = "Subir"
	DirectionDown Direction = "Bajar"
	DirectionNone Direction = ""
)

// ValueKind tells how a series is aggregated and which dataset it lands in.
type ValueKind string

const (
	KindVolume ValueKind = "volume"
	KindPrice  ValueKind = "price"
)

// MarketSpec identifies one balancing-market product and where its data
// lives inside the I90 workbook. Specs are read-only reference data.
type MarketSpec struct {
	ID            int
	Name          string
	Family        MarketFamily
	Direction     Direction
	QuarterHourly bool

	// VolumeSheet and PriceSheet are workbook sheet ids; zero means the
	// market has no data of that kind.
	VolumeSheet int
	PriceSheet  int
}

// Sheets returns the distinct sheet ids the spec reads from.
func (s MarketSpec) Sheets() []int {
	switch {
	case s.VolumeSheet == 0 && s.PriceSheet == 0:
		return nil
	case s.VolumeSheet == 0:
		return []int{s.PriceSheet}
	case s.PriceSheet == 0 || s.PriceSheet == s.VolumeSheet:
		return []int{s.VolumeSheet}
	default:
		return []int{s.VolumeSheet, s.PriceSheet}
	}
}

// KindForSheet tells whether the given sheet carries the spec's volumes or
// prices. A sheet listed as the volume source wins when both ids collide.
func (s MarketSpec) KindForSheet(sheetID int) ValueKind {
	if sheetID == s.VolumeSheet {
		return KindVolume
	}
	return KindPrice
}

// ReadsSheet reports whether the spec sources any data from the sheet.
func (s MarketSpec) ReadsSheet(sheetID int) bool {
	return sheetID != 0 && (sheetID == s.VolumeSheet || sheetID == s.PriceSheet)
}
