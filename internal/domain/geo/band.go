package geo

// Band is one traffic sensitivity tier. It applies to own-ship altitudes up
// to and including CeilingFt.
type Band struct {
	CeilingFt float64 `koanf:"ceiling_ft" json:"ceiling_ft"`
	TANM      float64 `koanf:"ta_nm" json:"ta_nm"`
	RANM      float64 `koanf:"ra_nm" json:"ra_nm"`
}

// DefaultBands is the standard horizontal threshold table, ordered by
// ascending ceiling.
var DefaultBands = []Band{
	{CeilingFt: 2350, TANM: 3.3, RANM: 2.0},
	{CeilingFt: 5000, TANM: 4.8, RANM: 2.8},
	{CeilingFt: 10000, TANM: 6.0, RANM: 3.5},
	{CeilingFt: 20000, TANM: 7.0, RANM: 4.0},
	{CeilingFt: 42000, TANM: 7.0, RANM: 4.0},
}

// BandFor returns the first band whose ceiling is at or above altitudeFt.
// Altitudes above the last ceiling use the last band. An empty table falls
// back to DefaultBands.
func BandFor(bands []Band, altitudeFt float64) Band {
	if len(bands) == 0 {
		bands = DefaultBands
	}
	for _, b := range bands {
		if altitudeFt <= b.CeilingFt {
			return b
		}
	}
	return bands[len(bands)-1]
}

// AltitudeBand returns the default sensitivity tier for an own-ship altitude.
func AltitudeBand(altitudeFt float64) Band {
	return BandFor(DefaultBands, altitudeFt)
}
