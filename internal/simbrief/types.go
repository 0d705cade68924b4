package simbrief

// OFP is the operational flight plan returned by SimBrief's xml.fetcher
// endpoint with json=1. Only the portions the tools render are mapped;
// SimBrief returns far more.
//
// SimBrief encodes numbers as JSON strings ("35000", "0.79"), so numeric
// fields are deliberately typed string.
type OFP struct {
	Fetch       Fetch     `json:"fetch"`
	Params      Params    `json:"params"`
	General     General   `json:"general"`
	Aircraft    Aircraft  `json:"aircraft"`
	Origin      Airport   `json:"origin"`
	Destination Airport   `json:"destination"`
	Alternate   Alternate `json:"alternate"`
	Fuel        Fuel      `json:"fuel"`
	Weights     Weights   `json:"weights"`
	Times       Times     `json:"times"`
	ATC         ATC       `json:"atc"`
}

// Fetch reports whether SimBrief could resolve the request. Status is
// "Success" on a good fetch and an error sentence otherwise.
type Fetch struct {
	UserID string `json:"userid"`
	Status string `json:"status"`
}

// Params describes the generation request
type Params struct {
	RequestID     string `json:"request_id"`
	UserID        string `json:"user_id"`
	TimeGenerated string `json:"time_generated"`
	// Units is the OFP unit system, "kgs" or "lbs"
	Units string `json:"units"`
}

// General holds flight-level planning values
type General struct {
	ICAOAirline     string `json:"icao_airline"`
	FlightNumber    string `json:"flight_number"`
	CostIndex       string `json:"costindex"`
	InitialAltitude string `json:"initial_altitude"`
	CruiseProfile   string `json:"cruise_profile"`
	Route           string `json:"route"`
	AirDistance     string `json:"air_distance"`
	GCDistance      string `json:"gc_distance"`
	RouteDistance   string `json:"route_distance"`
	Passengers      string `json:"passengers"`
	AvgWindComp     string `json:"avg_wind_comp"`
	AvgTemp         string `json:"avg_temperature"`
}

// Aircraft identifies the planned airframe
type Aircraft struct {
	ICAOCode string `json:"icaocode"`
	Name     string `json:"name"`
	Reg      string `json:"reg"`
}

// Airport is an origin or destination block
type Airport struct {
	ICAOCode   string `json:"icao_code"`
	IATACode   string `json:"iata_code"`
	Name       string `json:"name"`
	PlanRwy    string `json:"plan_rwy"`
	TransAlt   string `json:"trans_alt"`
	TransLevel string `json:"trans_level"`
	Metar      string `json:"metar"`
}

// Alternate is the planned alternate with its diversion routing
type Alternate struct {
	ICAOCode string `json:"icao_code"`
	IATACode string `json:"iata_code"`
	Name     string `json:"name"`
	PlanRwy  string `json:"plan_rwy"`
	Route    string `json:"route"`
	Burn     string `json:"burn"`
	Metar    string `json:"metar"`
}

// Fuel is the fuel plan in the unit system from Params.Units
type Fuel struct {
	Taxi          string `json:"taxi"`
	EnrouteBurn   string `json:"enroute_burn"`
	Contingency   string `json:"contingency"`
	AlternateBurn string `json:"alternate_burn"`
	Reserve       string `json:"reserve"`
	MinTakeoff    string `json:"min_takeoff"`
	PlanTakeoff   string `json:"plan_takeoff"`
	PlanRamp      string `json:"plan_ramp"`
	PlanLanding   string `json:"plan_landing"`
	AvgFuelFlow   string `json:"avg_fuel_flow"`
	MaxTanks      string `json:"max_tanks"`
}

// Weights is the load plan in the unit system from Params.Units
type Weights struct {
	OEW      string `json:"oew"`
	PaxCount string `json:"pax_count"`
	Cargo    string `json:"cargo"`
	Payload  string `json:"payload"`
	EstZFW   string `json:"est_zfw"`
	MaxZFW   string `json:"max_zfw"`
	EstTOW   string `json:"est_tow"`
	MaxTOW   string `json:"max_tow"`
	EstLDW   string `json:"est_ldw"`
	MaxLDW   string `json:"max_ldw"`
}

// Times holds scheduled times (unix seconds as strings) and durations (seconds)
type Times struct {
	EstTimeEnroute string `json:"est_time_enroute"`
	SchedOut       string `json:"sched_out"`
	SchedIn        string `json:"sched_in"`
	TaxiOut        string `json:"taxi_out"`
	TaxiIn         string `json:"taxi_in"`
	ReserveTime    string `json:"reserve_time"`
	EnduranceTime  string `json:"endurance"`
}

// ATC holds the filed flight plan details
type ATC struct {
	Callsign   string `json:"callsign"`
	FlightPlan string `json:"flightplan_text"`
	Route      string `json:"route"`
}
