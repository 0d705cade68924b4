package vatsim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `{
	"general": {"version": 3, "update_timestamp": "2026-08-30T10:15:00Z",
		"connected_clients": 3, "unique_users": 3},
	"pilots": [
		{"cid": 1000001, "name": "Leon N", "callsign": "DLH456", "server": "AMSTERDAM",
		 "latitude": 49.01, "longitude": 8.55, "altitude": 35975, "groundspeed": 447,
		 "transponder": "1000", "heading": 164, "logon_time": "2026-08-30T08:50:00Z",
		 "flight_plan": {"flight_rules": "I", "aircraft_short": "A320",
			"departure": "EDDF", "arrival": "LIRF", "alternate": "LIRN",
			"cruise_tas": "447", "altitude": "36000",
			"route": "DCT TOBOP UL126 RASVO UZ650 BODBA"}},
		{"cid": 1000002, "name": "No Plan", "callsign": "N172SP", "server": "AMSTERDAM",
		 "latitude": 37.61, "longitude": -122.37, "altitude": 1200, "groundspeed": 95,
		 "transponder": "1200", "heading": 280, "flight_plan": null},
		{"cid": 1000003, "name": "Inbound", "callsign": "BAW287", "server": "LONDON",
		 "latitude": 45.2, "longitude": -100.1, "altitude": 38000, "groundspeed": 480,
		 "transponder": "2201", "heading": 270,
		 "flight_plan": {"flight_rules": "I", "aircraft_short": "B77W",
			"departure": "EGLL", "arrival": "KSFO", "altitude": "38000"}}
	],
	"controllers": [
		{"cid": 2000001, "name": "Tower Person", "callsign": "SFO_TWR",
		 "frequency": "120.500", "facility": 4, "rating": 5, "server": "USA-WEST",
		 "visual_range": 50},
		{"cid": 2000002, "name": "Centre Person", "callsign": "EDGG_CTR",
		 "frequency": "135.720", "facility": 6, "rating": 7, "server": "AMSTERDAM",
		 "visual_range": 300}
	],
	"atis": [
		{"cid": 3000001, "callsign": "KSFO_ATIS", "frequency": "118.850",
		 "atis_code": "K", "text_atis": ["SFO ATIS INFO K", "28L 28R IN USE"]}
	]
}`

func newFakeVatsim(t *testing.T, dataHandler, metarHandler http.HandlerFunc) *Client {
	t.Helper()

	dataSrv := httptest.NewServer(dataHandler)
	t.Cleanup(dataSrv.Close)
	metarSrv := httptest.NewServer(metarHandler)
	t.Cleanup(metarSrv.Close)

	return NewClient(WithDataURL(dataSrv.URL), WithMetarURL(metarSrv.URL))
}

func TestFetchData(t *testing.T) {
	c := newFakeVatsim(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(sampleFeed))
		},
		func(w http.ResponseWriter, r *http.Request) {},
	)

	feed, err := c.FetchData(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, feed.General.ConnectedClients)
	require.Len(t, feed.Pilots, 3)
	require.Len(t, feed.Controllers, 2)
	require.Len(t, feed.Atis, 1)
	assert.Equal(t, "DLH456", feed.Pilots[0].Callsign)
	assert.Nil(t, feed.Pilots[1].FlightPlan)
}

func TestFetchDataServerError(t *testing.T) {
	c := newFakeVatsim(t,
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		},
		func(w http.ResponseWriter, r *http.Request) {},
	)

	_, err := c.FetchData(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestFetchMETAR(t *testing.T) {
	var gotPath string
	c := newFakeVatsim(t,
		func(w http.ResponseWriter, r *http.Request) {},
		func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte("KSFO 301556Z 28012KT 10SM FEW008 18/12 A3002\n"))
		},
	)

	metar, err := c.FetchMETAR(context.Background(), "ksfo")
	require.NoError(t, err)
	assert.Equal(t, "/KSFO", gotPath, "identifier is uppercased")
	assert.Equal(t, "KSFO 301556Z 28012KT 10SM FEW008 18/12 A3002", metar)
}

func TestFetchMETAREmptyBody(t *testing.T) {
	c := newFakeVatsim(t,
		func(w http.ResponseWriter, r *http.Request) {},
		func(w http.ResponseWriter, r *http.Request) {},
	)

	_, err := c.FetchMETAR(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no METAR")
}

func TestFetchMETAREmptyICAO(t *testing.T) {
	c := NewClient()
	_, err := c.FetchMETAR(context.Background(), "  ")
	assert.Error(t, err)
}
