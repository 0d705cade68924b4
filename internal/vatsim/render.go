package vatsim

import (
	"fmt"
	"strings"
)

// facilityNames maps the feed's facility index to a readable position type
var facilityNames = map[int]string{
	0: "Observer",
	1: "Flight Service",
	2: "Delivery",
	3: "Ground",
	4: "Tower",
	5: "Approach/Departure",
	6: "Center",
}

// FacilityName returns a readable name for a controller facility index
func FacilityName(facility int) string {
	if name, ok := facilityNames[facility]; ok {
		return name
	}
	return "Unknown"
}

// RenderAirportActivity formats everything happening at an airport: online
// controllers, ATIS, and traffic filed to depart or arrive.
func RenderAirportActivity(feed *DataFeed, icao string) string {
	icao = strings.ToUpper(strings.TrimSpace(icao))

	controllers := feed.ControllersForAirport(icao)
	atis := feed.AtisForAirport(icao)
	departures := feed.DeparturesFrom(icao)
	arrivals := feed.ArrivalsTo(icao)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s network activity\n\n", icao)

	if len(controllers) == 0 && len(atis) == 0 && len(departures) == 0 && len(arrivals) == 0 {
		b.WriteString("No controllers, ATIS, or filed traffic for this airport right now.\n")
		return b.String()
	}

	if len(controllers) > 0 {
		b.WriteString("## Controllers online\n\n")
		b.WriteString("| Position | Frequency | Type | Controller |\n|---|---|---|---|\n")
		for _, c := range controllers {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				c.Callsign, c.Frequency, FacilityName(c.Facility), c.Name)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No controllers online.\n\n")
	}

	for _, a := range atis {
		fmt.Fprintf(&b, "## ATIS %s (%s", a.Callsign, a.Frequency)
		if a.AtisCode != "" {
			fmt.Fprintf(&b, ", information %s", a.AtisCode)
		}
		b.WriteString(")\n\n")
		if len(a.TextAtis) > 0 {
			fmt.Fprintf(&b, "```\n%s\n```\n\n", strings.Join(a.TextAtis, "\n"))
		}
	}

	if len(departures) > 0 {
		fmt.Fprintf(&b, "## Departures (%d)\n\n", len(departures))
		b.WriteString("| Callsign | Aircraft | Destination | Altitude filed |\n|---|---|---|---|\n")
		for _, p := range departures {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				p.Callsign, p.FlightPlan.Aircraft, p.FlightPlan.Arrival, p.FlightPlan.Altitude)
		}
		b.WriteString("\n")
	}

	if len(arrivals) > 0 {
		fmt.Fprintf(&b, "## Arrivals (%d)\n\n", len(arrivals))
		b.WriteString("| Callsign | Aircraft | Origin | Groundspeed |\n|---|---|---|---|\n")
		for _, p := range arrivals {
			fmt.Fprintf(&b, "| %s | %s | %s | %d kt |\n",
				p.Callsign, p.FlightPlan.Aircraft, p.FlightPlan.Departure, p.Groundspeed)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderPilot formats one pilot's position and filed plan
func RenderPilot(p *Pilot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", p.Callsign)
	fmt.Fprintf(&b, "- **Pilot:** %s (CID %d)\n", p.Name, p.CID)
	fmt.Fprintf(&b, "- **Position:** %.4f, %.4f\n", p.Latitude, p.Longitude)
	fmt.Fprintf(&b, "- **Altitude:** %d ft, groundspeed %d kt, heading %03d\n",
		p.Altitude, p.Groundspeed, p.Heading)
	fmt.Fprintf(&b, "- **Squawk:** %s\n", p.Transponder)
	fmt.Fprintf(&b, "- **Online since:** %s\n", p.LogonTime)

	if fp := p.FlightPlan; fp != nil {
		b.WriteString("\n## Filed flight plan\n\n")
		fmt.Fprintf(&b, "- **%s → %s**", fp.Departure, fp.Arrival)
		if fp.Alternate != "" {
			fmt.Fprintf(&b, " (alternate %s)", fp.Alternate)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "- **Aircraft:** %s, %s rules\n", fp.Aircraft, fp.FlightRules)
		fmt.Fprintf(&b, "- **Cruise:** %s at %s kt TAS\n", fp.Altitude, fp.CruiseTas)
		if fp.Route != "" {
			fmt.Fprintf(&b, "- **Route:** `%s`\n", fp.Route)
		}
		if fp.Remarks != "" {
			fmt.Fprintf(&b, "- **Remarks:** %s\n", fp.Remarks)
		}
	} else {
		b.WriteString("\nNo flight plan filed.\n")
	}

	return b.String()
}

// RenderMETAR formats a raw METAR for tool output
func RenderMETAR(icao, metar string) string {
	return fmt.Sprintf("METAR for %s:\n\n```\n%s\n```\n", strings.ToUpper(icao), metar)
}
