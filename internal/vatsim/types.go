package vatsim

import "strings"

// DataFeed is the VATSIM v3 data feed document. Only the sections the tools
// consume are mapped.
type DataFeed struct {
	General     General      `json:"general"`
	Pilots      []Pilot      `json:"pilots"`
	Controllers []Controller `json:"controllers"`
	Atis        []Atis       `json:"atis"`
}

// General describes the feed snapshot
type General struct {
	Version          int    `json:"version"`
	UpdateTimestamp  string `json:"update_timestamp"`
	ConnectedClients int    `json:"connected_clients"`
	UniqueUsers      int    `json:"unique_users"`
}

// Pilot is a connected pilot and their filed flight plan, if any
type Pilot struct {
	CID         int         `json:"cid"`
	Name        string      `json:"name"`
	Callsign    string      `json:"callsign"`
	Server      string      `json:"server"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	Altitude    int         `json:"altitude"`
	Groundspeed int         `json:"groundspeed"`
	Transponder string      `json:"transponder"`
	Heading     int         `json:"heading"`
	FlightPlan  *FlightPlan `json:"flight_plan"`
	LogonTime   string      `json:"logon_time"`
	LastUpdated string      `json:"last_updated"`
}

// FlightPlan is a pilot's filed plan
type FlightPlan struct {
	FlightRules string `json:"flight_rules"`
	Aircraft    string `json:"aircraft_short"`
	Departure   string `json:"departure"`
	Arrival     string `json:"arrival"`
	Alternate   string `json:"alternate"`
	CruiseTas   string `json:"cruise_tas"`
	Altitude    string `json:"altitude"`
	Deptime     string `json:"deptime"`
	EnrouteTime string `json:"enroute_time"`
	FuelTime    string `json:"fuel_time"`
	Route       string `json:"route"`
	Remarks     string `json:"remarks"`
}

// Controller is a connected ATC position
type Controller struct {
	CID         int      `json:"cid"`
	Name        string   `json:"name"`
	Callsign    string   `json:"callsign"`
	Frequency   string   `json:"frequency"`
	Facility    int      `json:"facility"`
	Rating      int      `json:"rating"`
	Server      string   `json:"server"`
	VisualRange int      `json:"visual_range"`
	TextAtis    []string `json:"text_atis"`
	LogonTime   string   `json:"logon_time"`
}

// Atis is a connected ATIS station
type Atis struct {
	CID       int      `json:"cid"`
	Callsign  string   `json:"callsign"`
	Frequency string   `json:"frequency"`
	AtisCode  string   `json:"atis_code"`
	TextAtis  []string `json:"text_atis"`
}

// airportPrefixes returns the callsign prefixes that identify stations
// serving an airport. VATSIM position callsigns use the local identifier:
// KSFO tower is SFO_TWR, EDDF tower is EDDF_TWR. US/Canada ICAO codes drop
// the leading K/C in common use, so both forms are matched.
func airportPrefixes(icao string) []string {
	icao = strings.ToUpper(strings.TrimSpace(icao))
	if icao == "" {
		return nil
	}

	prefixes := []string{icao}
	if len(icao) == 4 && (icao[0] == 'K' || icao[0] == 'C') {
		prefixes = append(prefixes, icao[1:])
	}
	return prefixes
}

// servesAirport reports whether a station callsign belongs to an airport.
// Matches "SFO_TWR", "KSFO_ATIS", "SFO_1_GND" style callsigns; enroute
// positions (no underscore-delimited airport prefix) do not match.
func servesAirport(callsign, icao string) bool {
	for _, prefix := range airportPrefixes(icao) {
		if strings.HasPrefix(callsign, prefix+"_") {
			return true
		}
	}
	return false
}

// ControllersForAirport returns the controllers whose callsign serves the
// given airport.
func (d *DataFeed) ControllersForAirport(icao string) []Controller {
	var out []Controller
	for _, c := range d.Controllers {
		if servesAirport(c.Callsign, icao) {
			out = append(out, c)
		}
	}
	return out
}

// AtisForAirport returns the ATIS stations for the given airport
func (d *DataFeed) AtisForAirport(icao string) []Atis {
	var out []Atis
	for _, a := range d.Atis {
		if servesAirport(a.Callsign, icao) {
			out = append(out, a)
		}
	}
	return out
}

// DeparturesFrom returns pilots whose filed plan departs the given airport
func (d *DataFeed) DeparturesFrom(icao string) []Pilot {
	icao = strings.ToUpper(strings.TrimSpace(icao))
	var out []Pilot
	for _, p := range d.Pilots {
		if p.FlightPlan != nil && p.FlightPlan.Departure == icao {
			out = append(out, p)
		}
	}
	return out
}

// ArrivalsTo returns pilots whose filed plan arrives at the given airport
func (d *DataFeed) ArrivalsTo(icao string) []Pilot {
	icao = strings.ToUpper(strings.TrimSpace(icao))
	var out []Pilot
	for _, p := range d.Pilots {
		if p.FlightPlan != nil && p.FlightPlan.Arrival == icao {
			out = append(out, p)
		}
	}
	return out
}

// FindPilot returns the connected pilot with the given callsign, or nil.
// Callsign comparison is case-insensitive; VATSIM callsigns are uppercase.
func (d *DataFeed) FindPilot(callsign string) *Pilot {
	callsign = strings.ToUpper(strings.TrimSpace(callsign))
	for i := range d.Pilots {
		if d.Pilots[i].Callsign == callsign {
			return &d.Pilots[i]
		}
	}
	return nil
}
