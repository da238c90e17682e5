package dataset

import "fmt"

// checkerNames maps each checked measurement type to the column name the
// check engine recognizes. Only checked types appear here; the presence of
// a type in this table is what places it in CategoryChecked.
var checkerNames = map[ColumnType]string{
	Longitude:               "longitude",
	Latitude:                "latitude",
	SampleDepth:             "depth",
	Salinity:                "sal",
	EquilibratorTemperature: "temperature_equi",
	SeaSurfaceTemperature:   "temp",
	EquilibratorPressure:    "pressure_equi",
	SeaLevelPressure:        "pressure_atm",
	XCO2WaterEqu:            "xco2water_equ_dry",
	XCO2WaterSST:            "xco2water_sst_dry",
	PCO2WaterEqu:            "pco2water_equ_wet",
	PCO2WaterSST:            "pco2water_sst_wet",
	FCO2WaterEqu:            "fco2water_equ_wet",
	FCO2WaterSST:            "fco2water_sst_wet",
	XCO2Atm:                 "xco2_air",
	PCO2Atm:                 "pco2_air",
	FCO2Atm:                 "fco2_air",
	ShipSpeed:               "ship_speed",
	ShipDirection:           "ship_dir",
	WindSpeedTrue:           "wind_speed_true",
	WindSpeedRelative:       "wind_speed_rel",
	WindDirectionTrue:       "wind_dir_true",
	WindDirectionRelative:   "wind_dir_rel",
}

// Vocabulary is the immutable translation table between the dashboard's
// unit vocabulary and the check engine's unit vocabulary. Unit lists are
// positional: the declared unit's index in the dashboard list selects the
// engine unit at the same index. A Vocabulary is built once and shared;
// tests may construct fixtures with NewVocabulary.
type Vocabulary struct {
	checkerNames map[ColumnType]string
	stdUnits     map[ColumnType][]string
	engineUnits  map[ColumnType][]string
}

// NewVocabulary builds a vocabulary from explicit tables. The maps are not
// copied; callers must not mutate them after the call.
func NewVocabulary(names map[ColumnType]string, std, engine map[ColumnType][]string) *Vocabulary {
	return &Vocabulary{checkerNames: names, stdUnits: std, engineUnits: engine}
}

// CheckerName returns the engine's column name for a checked type.
func (v *Vocabulary) CheckerName(ct ColumnType) (string, bool) {
	name, ok := v.checkerNames[ct]
	return name, ok
}

// TranslateUnit converts a declared dashboard unit to the engine's unit
// string for the given column type.
func (v *Vocabulary) TranslateUnit(ct ColumnType, unit string) (string, error) {
	std := v.stdUnits[ct]
	for i, u := range std {
		if u == unit {
			engine := v.engineUnits[ct]
			if i >= len(engine) {
				return "", fmt.Errorf("no engine unit at position %d for type %s", i, ct)
			}
			return engine[i], nil
		}
	}
	return "", fmt.Errorf("unit %q not in the %s vocabulary", unit, ct)
}

// StandardUnits returns the dashboard unit list for a column type.
func (v *Vocabulary) StandardUnits(ct ColumnType) []string {
	return v.stdUnits[ct]
}

var noUnits = []string{""}

var defaultVocab = &Vocabulary{
	checkerNames: checkerNames,
	stdUnits: map[ColumnType][]string{
		Timestamp: {"YYYY-MM-DD HH:MM:SS", "MM/DD/YYYY HH:MM:SS", "DD/MM/YYYY HH:MM:SS"},
		Date:      {"YYYY-MM-DD", "MM/DD/YYYY", "DD/MM/YYYY"},
		Year:      noUnits,
		Month:     noUnits,
		Day:       noUnits,
		Time:      {"HH:MM:SS"},
		Hour:      noUnits,
		Minute:    noUnits,
		Second:    noUnits,

		Longitude:               {"deg.E"},
		Latitude:                {"deg.N"},
		SampleDepth:             {"meters"},
		Salinity:                {"PSU"},
		EquilibratorTemperature: {"deg.C", "Kelvin", "deg.F"},
		SeaSurfaceTemperature:   {"deg.C", "Kelvin", "deg.F"},
		EquilibratorPressure:    {"hPa", "kPa", "mmHg"},
		SeaLevelPressure:        {"hPa", "kPa", "mmHg"},
		XCO2WaterEqu:            {"umol/mol"},
		XCO2WaterSST:            {"umol/mol"},
		PCO2WaterEqu:            {"uatm"},
		PCO2WaterSST:            {"uatm"},
		FCO2WaterEqu:            {"uatm"},
		FCO2WaterSST:            {"uatm"},
		XCO2Atm:                 {"umol/mol"},
		PCO2Atm:                 {"uatm"},
		FCO2Atm:                 {"uatm"},
		ShipSpeed:               {"knots", "km/h", "m/s", "mph"},
		ShipDirection:           {"deg.clk.N"},
		WindSpeedTrue:           {"m/s"},
		WindSpeedRelative:       {"m/s"},
		WindDirectionTrue:       {"deg.clk.N"},
		WindDirectionRelative:   {"deg.clk.N"},
	},
	engineUnits: map[ColumnType][]string{
		// The engine consumes only the date portion of a full timestamp
		// format; the time portion is fixed.
		Timestamp: {"YYYY-MM-DD", "MM/DD/YYYY", "DD/MM/YYYY"},
		Date:      {"YYYY-MM-DD", "MM/DD/YYYY", "DD/MM/YYYY"},
		Year:      noUnits,
		Month:     noUnits,
		Day:       noUnits,
		Time:      {"HH:MM:SS"},
		Hour:      noUnits,
		Minute:    noUnits,
		Second:    noUnits,

		Longitude:               {"decimal_degrees"},
		Latitude:                {"decimal_degrees"},
		SampleDepth:             {"meters"},
		Salinity:                {"psu"},
		EquilibratorTemperature: {"degC", "Kelvin", "degF"},
		SeaSurfaceTemperature:   {"degC", "Kelvin", "degF"},
		EquilibratorPressure:    {"hPa", "kPa", "mmHg"},
		SeaLevelPressure:        {"hPa", "kPa", "mmHg"},
		XCO2WaterEqu:            {"ppm"},
		XCO2WaterSST:            {"ppm"},
		PCO2WaterEqu:            {"uatm"},
		PCO2WaterSST:            {"uatm"},
		FCO2WaterEqu:            {"uatm"},
		FCO2WaterSST:            {"uatm"},
		XCO2Atm:                 {"ppm"},
		PCO2Atm:                 {"uatm"},
		FCO2Atm:                 {"uatm"},
		ShipSpeed:               {"knots", "km/h", "m/s", "mph"},
		ShipDirection:           {"decimal_degrees"},
		WindSpeedTrue:           {"m/s"},
		WindSpeedRelative:       {"m/s"},
		WindDirectionTrue:       {"decimal_degrees"},
		WindDirectionRelative:   {"decimal_degrees"},
	},
}

// DefaultVocabulary returns the production unit translation tables.
func DefaultVocabulary() *Vocabulary {
	return defaultVocab
}
