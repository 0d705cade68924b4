package simbrief

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RenderOFP formats a flight plan as markdown for tool output
func RenderOFP(ofp *OFP) string {
	var b strings.Builder

	callsign := ofp.ATC.Callsign
	if callsign == "" {
		callsign = ofp.General.ICAOAirline + ofp.General.FlightNumber
	}

	fmt.Fprintf(&b, "# Flight Plan %s: %s → %s\n\n",
		callsign, ofp.Origin.ICAOCode, ofp.Destination.ICAOCode)

	fmt.Fprintf(&b, "**Aircraft:** %s (%s)", ofp.Aircraft.Name, ofp.Aircraft.ICAOCode)
	if ofp.Aircraft.Reg != "" {
		fmt.Fprintf(&b, " reg %s", ofp.Aircraft.Reg)
	}
	b.WriteString("\n\n")

	b.WriteString("## Routing\n\n")
	fmt.Fprintf(&b, "- **Origin:** %s (%s), runway %s\n",
		ofp.Origin.Name, ofp.Origin.ICAOCode, orDash(ofp.Origin.PlanRwy))
	fmt.Fprintf(&b, "- **Destination:** %s (%s), runway %s\n",
		ofp.Destination.Name, ofp.Destination.ICAOCode, orDash(ofp.Destination.PlanRwy))
	if ofp.Alternate.ICAOCode != "" {
		fmt.Fprintf(&b, "- **Alternate:** %s (%s)\n", ofp.Alternate.Name, ofp.Alternate.ICAOCode)
	}
	fmt.Fprintf(&b, "- **Route:** `%s`\n", orDash(ofp.General.Route))
	fmt.Fprintf(&b, "- **Cruise:** %s profile, initial altitude %s ft\n",
		orDash(ofp.General.CruiseProfile), orDash(ofp.General.InitialAltitude))
	if ofp.General.RouteDistance != "" {
		fmt.Fprintf(&b, "- **Distance:** %s nm (great circle %s nm)\n",
			ofp.General.RouteDistance, orDash(ofp.General.GCDistance))
	}
	if ete := formatDurationSeconds(ofp.Times.EstTimeEnroute); ete != "" {
		fmt.Fprintf(&b, "- **Time enroute:** %s\n", ete)
	}
	b.WriteString("\n")

	units := ofp.Params.Units
	if units == "" {
		units = "kgs"
	}

	fmt.Fprintf(&b, "## Fuel (%s)\n\n", units)
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Enroute burn | %s |\n", orDash(ofp.Fuel.EnrouteBurn))
	fmt.Fprintf(&b, "| Contingency | %s |\n", orDash(ofp.Fuel.Contingency))
	fmt.Fprintf(&b, "| Alternate | %s |\n", orDash(ofp.Fuel.AlternateBurn))
	fmt.Fprintf(&b, "| Reserve | %s |\n", orDash(ofp.Fuel.Reserve))
	fmt.Fprintf(&b, "| Taxi | %s |\n", orDash(ofp.Fuel.Taxi))
	fmt.Fprintf(&b, "| **Block fuel** | **%s** |\n", orDash(ofp.Fuel.PlanRamp))
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Weights (%s)\n\n", units)
	fmt.Fprintf(&b, "| | Est | Max |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| ZFW | %s | %s |\n", orDash(ofp.Weights.EstZFW), orDash(ofp.Weights.MaxZFW))
	fmt.Fprintf(&b, "| TOW | %s | %s |\n", orDash(ofp.Weights.EstTOW), orDash(ofp.Weights.MaxTOW))
	fmt.Fprintf(&b, "| LDW | %s | %s |\n", orDash(ofp.Weights.EstLDW), orDash(ofp.Weights.MaxLDW))
	fmt.Fprintf(&b, "\nPayload %s, passengers %s\n\n",
		orDash(ofp.Weights.Payload), orDash(ofp.Weights.PaxCount))

	if ofp.Origin.Metar != "" || ofp.Destination.Metar != "" {
		b.WriteString("## Weather\n\n")
		if ofp.Origin.Metar != "" {
			fmt.Fprintf(&b, "- **%s:** `%s`\n", ofp.Origin.ICAOCode, ofp.Origin.Metar)
		}
		if ofp.Destination.Metar != "" {
			fmt.Fprintf(&b, "- **%s:** `%s`\n", ofp.Destination.ICAOCode, ofp.Destination.Metar)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderRoute formats just the routing portion of a flight plan, compact
// enough to paste into an FMC or ATC client.
func RenderRoute(ofp *OFP) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s → %s**\n\n", ofp.Origin.ICAOCode, ofp.Destination.ICAOCode)
	fmt.Fprintf(&b, "```\n%s/%s %s %s/%s\n```\n",
		ofp.Origin.ICAOCode, orDash(ofp.Origin.PlanRwy),
		orDash(ofp.General.Route),
		ofp.Destination.ICAOCode, orDash(ofp.Destination.PlanRwy))
	fmt.Fprintf(&b, "\nInitial altitude %s ft", orDash(ofp.General.InitialAltitude))
	if ofp.Alternate.ICAOCode != "" {
		fmt.Fprintf(&b, ", alternate %s", ofp.Alternate.ICAOCode)
		if ofp.Alternate.Route != "" {
			fmt.Fprintf(&b, " via `%s`", ofp.Alternate.Route)
		}
	}
	b.WriteString("\n")

	return b.String()
}

// formatDurationSeconds renders a seconds-as-string value as "2h34m".
// SimBrief durations arrive as strings; an unparseable value renders empty.
func formatDurationSeconds(s string) string {
	if s == "" {
		return ""
	}
	secs, err := strconv.Atoi(s)
	if err != nil || secs <= 0 {
		return ""
	}
	d := time.Duration(secs) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
