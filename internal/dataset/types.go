// Package dataset defines the data model for cruise measurement datasets:
// the per-column semantic type vocabulary, quality flag collections, and
// the status labels tracked through the submission workflow.
// This package has no I/O dependencies and can be used by any tier.
package dataset

import (
	"fmt"
)

// ColumnType is the semantic type assigned to one data column.
type ColumnType int

const (
	// Unknown is the initial type of every column on first upload.
	Unknown ColumnType = iota

	// Date/time part types. These feed the composite timestamp node of the
	// checker schema rather than appearing as ordinary measurement columns.
	Timestamp // full date and time in one column
	Date
	Year
	Month
	Day
	Time // time of day in one column
	Hour
	Minute
	Second

	// Checked measurement types. These are sent to the check engine and
	// overwritten with unit-normalized values after standardization.
	Longitude
	Latitude
	SampleDepth
	Salinity
	EquilibratorTemperature
	SeaSurfaceTemperature
	EquilibratorPressure
	SeaLevelPressure
	XCO2WaterEqu
	XCO2WaterSST
	PCO2WaterEqu
	PCO2WaterSST
	FCO2WaterEqu
	FCO2WaterSST
	XCO2Atm
	PCO2Atm
	FCO2Atm
	ShipSpeed
	ShipDirection
	WindSpeedTrue
	WindSpeedRelative
	WindDirectionTrue
	WindDirectionRelative

	// Excluded types: identifiers, derived/computed quantities, region tags,
	// and user WOCE flag columns. Recognized but never sent to the engine.
	Expocode
	CruiseName
	DeltaPCO2
	DeltaFCO2
	WOASalinity
	NCEPSeaLevelPressure
	FCO2Rec
	FCO2RecSource
	DeltaTemperature
	RegionID
	SecondsSince1970
	DaysSince1970
	DayOfYear
	CalcShipSpeed
	EtopoDepth
	GlobalViewCO2
	DistanceToLand
	WoceCO2Water
	WoceCO2Atm
)

// Category groups column types by how the check pipeline treats them.
type Category int

const (
	CategoryUnknown       Category = iota // unassigned; must be resolved before checking
	CategoryTimestampPart                 // contributes to the composite timestamp node
	CategoryChecked                       // ordinary measurement column sent to the engine
	CategoryExcluded                      // recognized but never sent to the engine
)

// columnTypeNames maps each type to its stable wire/storage name.
var columnTypeNames = map[ColumnType]string{
	Unknown:                 "unknown",
	Timestamp:               "timestamp",
	Date:                    "date",
	Year:                    "year",
	Month:                   "month",
	Day:                     "day",
	Time:                    "time",
	Hour:                    "hour",
	Minute:                  "minute",
	Second:                  "second",
	Longitude:               "longitude",
	Latitude:                "latitude",
	SampleDepth:             "sample_depth",
	Salinity:                "salinity",
	EquilibratorTemperature: "equilibrator_temperature",
	SeaSurfaceTemperature:   "sea_surface_temperature",
	EquilibratorPressure:    "equilibrator_pressure",
	SeaLevelPressure:        "sea_level_pressure",
	XCO2WaterEqu:            "xco2_water_equ",
	XCO2WaterSST:            "xco2_water_sst",
	PCO2WaterEqu:            "pco2_water_equ",
	PCO2WaterSST:            "pco2_water_sst",
	FCO2WaterEqu:            "fco2_water_equ",
	FCO2WaterSST:            "fco2_water_sst",
	XCO2Atm:                 "xco2_atm",
	PCO2Atm:                 "pco2_atm",
	FCO2Atm:                 "fco2_atm",
	ShipSpeed:               "ship_speed",
	ShipDirection:           "ship_direction",
	WindSpeedTrue:           "wind_speed_true",
	WindSpeedRelative:       "wind_speed_relative",
	WindDirectionTrue:       "wind_direction_true",
	WindDirectionRelative:   "wind_direction_relative",
	Expocode:                "expocode",
	CruiseName:              "cruise_name",
	DeltaPCO2:               "delta_pco2",
	DeltaFCO2:               "delta_fco2",
	WOASalinity:             "woa_salinity",
	NCEPSeaLevelPressure:    "ncep_sea_level_pressure",
	FCO2Rec:                 "fco2_rec",
	FCO2RecSource:           "fco2_rec_source",
	DeltaTemperature:        "delta_temperature",
	RegionID:                "region_id",
	SecondsSince1970:        "seconds_since_1970",
	DaysSince1970:           "days_since_1970",
	DayOfYear:               "day_of_year",
	CalcShipSpeed:           "calc_ship_speed",
	EtopoDepth:              "etopo_depth",
	GlobalViewCO2:           "globalview_co2",
	DistanceToLand:          "distance_to_land",
	WoceCO2Water:            "woce_co2_water",
	WoceCO2Atm:              "woce_co2_atm",
}

// columnTypesByName is the inverse of columnTypeNames.
var columnTypesByName = func() map[string]ColumnType {
	m := make(map[string]ColumnType, len(columnTypeNames))
	for ct, name := range columnTypeNames {
		m[name] = ct
	}
	return m
}()

// timestampParts lists the types contributing to the composite timestamp node.
var timestampParts = map[ColumnType]bool{
	Timestamp: true,
	Date:      true,
	Year:      true,
	Month:     true,
	Day:       true,
	Time:      true,
	Hour:      true,
	Minute:    true,
	Second:    true,
}

// excludedTypes lists the types recognized but never sent to the engine.
var excludedTypes = map[ColumnType]bool{
	Expocode:             true,
	CruiseName:           true,
	DeltaPCO2:            true,
	DeltaFCO2:            true,
	WOASalinity:          true,
	NCEPSeaLevelPressure: true,
	FCO2Rec:              true,
	FCO2RecSource:        true,
	DeltaTemperature:     true,
	RegionID:             true,
	SecondsSince1970:     true,
	DaysSince1970:        true,
	DayOfYear:            true,
	CalcShipSpeed:        true,
	EtopoDepth:           true,
	GlobalViewCO2:        true,
	DistanceToLand:       true,
	WoceCO2Water:         true,
	WoceCO2Atm:           true,
}

// userFlagTypes lists the columns carrying user-asserted WOCE flags.
var userFlagTypes = map[ColumnType]bool{
	WoceCO2Water: true,
	WoceCO2Atm:   true,
}

// Category returns how the check pipeline treats this column type.
// A type missing from every lookup table resolves to CategoryUnknown,
// which the spec builder treats as a vocabulary drift failure.
func (ct ColumnType) Category() Category {
	switch {
	case ct == Unknown:
		return CategoryUnknown
	case timestampParts[ct]:
		return CategoryTimestampPart
	case excludedTypes[ct]:
		return CategoryExcluded
	default:
		if _, ok := checkerNames[ct]; ok {
			return CategoryChecked
		}
		return CategoryUnknown
	}
}

// IsUserFlag reports whether this column carries user-asserted WOCE flags.
func (ct ColumnType) IsUserFlag() bool {
	return userFlagTypes[ct]
}

// String returns the stable name of the column type.
func (ct ColumnType) String() string {
	if name, ok := columnTypeNames[ct]; ok {
		return name
	}
	return fmt.Sprintf("column_type(%d)", int(ct))
}

// ParseColumnType resolves a stable name back to a column type.
func ParseColumnType(name string) (ColumnType, bool) {
	ct, ok := columnTypesByName[name]
	return ct, ok
}

// MarshalText implements encoding.TextMarshaler so column types round-trip
// through the JSON dataset files by name rather than by ordinal.
func (ct ColumnType) MarshalText() ([]byte, error) {
	name, ok := columnTypeNames[ct]
	if !ok {
		return nil, fmt.Errorf("unnamed column type %d", int(ct))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ct *ColumnType) UnmarshalText(text []byte) error {
	parsed, ok := columnTypesByName[string(text)]
	if !ok {
		return fmt.Errorf("unknown column type %q", string(text))
	}
	*ct = parsed
	return nil
}

// AllColumnTypes returns every declared column type.
// Primarily useful for vocabulary completeness checks in tests.
func AllColumnTypes() []ColumnType {
	types := make([]ColumnType, 0, len(columnTypeNames))
	for ct := range columnTypeNames {
		types = append(types, ct)
	}
	return types
}
