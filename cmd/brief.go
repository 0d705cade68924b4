package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leonnwankwo/skybrief/internal/simbrief"
	"github.com/leonnwankwo/skybrief/internal/vatsim"
)

func newBriefCmd() *cobra.Command {
	var (
		username  string
		routeOnly bool
		withWx    bool
	)

	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Print the latest SimBrief flight plan",
		Long: `Fetch the most recently generated SimBrief operational flight plan (OFP)
for a pilot and print it as a markdown briefing.

The SimBrief username is read from the --username flag or the
SIMBRIEF_USERNAME environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				username = os.Getenv("SIMBRIEF_USERNAME")
			}
			if username == "" {
				return fmt.Errorf("no SimBrief username: set --username or SIMBRIEF_USERNAME")
			}

			ctx := context.Background()
			client := simbrief.NewClient()

			ofp, err := client.FetchOFP(ctx, username)
			if err != nil {
				return fmt.Errorf("failed to fetch flight plan: %w", err)
			}

			if routeOnly {
				fmt.Println(simbrief.RenderRoute(ofp))
				return nil
			}

			fmt.Println(simbrief.RenderOFP(ofp))

			if withWx {
				vc := vatsim.NewClient()
				for _, icao := range []string{ofp.Origin.ICAOCode, ofp.Destination.ICAOCode} {
					if icao == "" {
						continue
					}
					metar, err := vc.FetchMETAR(ctx, icao)
					if err != nil {
						fmt.Fprintf(os.Stderr, "Warning: METAR for %s unavailable: %v\n", icao, err)
						continue
					}
					fmt.Println(vatsim.RenderMETAR(icao, metar))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "SimBrief username or pilot ID. Can also use SIMBRIEF_USERNAME env var.")
	cmd.Flags().BoolVar(&routeOnly, "route", false, "Print only the filed route string")
	cmd.Flags().BoolVar(&withWx, "wx", false, "Also fetch live METARs for origin and destination from VATSIM")

	return cmd
}
