package feature

// Fixed vector-space schema for incident records. The numeric list order and
// the categorical list order pin the layout of every feature vector; the
// one-hot columns for each categorical feature are appended after the
// numeric block, per feature in declared order, per level in sorted order.

const (
	FieldSeverity             = "severity_1_5"
	FieldDurationHours        = "duration_hours"
	FieldPopulationAffected   = "population_affected_est"
	FieldInjuries             = "injuries_est"
	FieldFatalities           = "fatalities_est"
	FieldStructuresThreatened = "structures_threatened"
	FieldStructuresDamaged    = "structures_damaged"
	FieldAcresBurned          = "acres_burned"
	FieldWindMph              = "wind_mph"
	FieldPrecipInches         = "precip_inches"
	FieldTemperatureF         = "temperature_f"
	FieldEvacuationOrder      = "evacuation_order_issued"
	FieldEvacPopulation       = "evac_population_est"
	FieldHospitalDiversion    = "hospital_diversion_flag"
	FieldStartHour            = "start_hour"
	FieldStartMonth           = "start_month"
	FieldStartTime            = "start_time"

	FieldCategory = "incident_category"
	FieldSubtype  = "incident_subtype"
	FieldCity     = "city"
	FieldState    = "state"

	FieldEngines    = "firetrucks_dispatched_engines"
	FieldAmbulances = "ambulances_dispatched"
)

var NumericFeatures = []string{
	FieldSeverity,
	FieldDurationHours,
	FieldPopulationAffected,
	FieldInjuries,
	FieldFatalities,
	FieldStructuresThreatened,
	FieldStructuresDamaged,
	FieldAcresBurned,
	FieldWindMph,
	FieldPrecipInches,
	FieldTemperatureF,
	FieldEvacuationOrder,
	FieldEvacPopulation,
	FieldHospitalDiversion,
	FieldStartHour,
	FieldStartMonth,
}

var CategoricalFeatures = []string{
	FieldCategory,
	FieldSubtype,
	FieldCity,
	FieldState,
}

var TargetFields = []string{
	FieldEngines,
	FieldAmbulances,
}
