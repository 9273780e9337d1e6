package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/aarondl/ircstate/data"
	"github.com/aarondl/ircstate/dispatch"
	"github.com/aarondl/ircstate/irc"
	"github.com/aarondl/ircstate/transport"
)

const network = "testnet"

func newTestServer(t *testing.T, opts ...dispatch.Option) (*httptest.Server,
	*dispatch.Dispatcher) {

	t.Helper()

	promReg := prometheus.NewRegistry()
	metrics := dispatch.NewMetrics(promReg)

	opts = append([]dispatch.Option{
		dispatch.WithNetwork(network),
		dispatch.WithMetrics(metrics),
	}, opts...)
	d, err := dispatch.New(&transport.Recorder{}, nil, opts...)
	require.NoError(t, err)

	reg := dispatch.NewRegistry(nil, metrics)
	require.NoError(t, reg.Add(d))

	events := []*irc.Event{
		irc.NewEvent(network, irc.RPL_WELCOME, "irc.test.net", "me", "Welcome"),
		irc.NewEvent(network, irc.JOIN, "me!my@host.com", "#chan"),
		irc.NewEvent(network, irc.RPL_NAMREPLY, "irc.test.net", "me", "=",
			"#chan", "@me +alice"),
		irc.NewEvent(network, irc.RPL_TOPIC, "irc.test.net", "me", "#chan",
			"welcome all"),
	}
	for _, ev := range events {
		d.Dispatch(ev)
	}

	srv := httptest.NewServer(NewServer(reg, promReg, nil))
	t.Cleanup(srv.Close)
	return srv, d
}

func get(t *testing.T, srv *httptest.Server, path string, v interface{}) int {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestNetworks(t *testing.T) {
	srv, _ := newTestServer(t)

	var networks []string
	assert.Equal(t, http.StatusOK, get(t, srv, "/api/v1/networks", &networks))
	assert.Equal(t, []string{network}, networks)

	var info NetworkInfo
	assert.Equal(t, http.StatusOK, get(t, srv, "/api/v1/net/testnet", &info))
	assert.Equal(t, "tracking", info.State)
	assert.Equal(t, "me", info.Self)
	assert.NotEmpty(t, info.Session)
	assert.Equal(t, 2, info.Users)
	assert.Equal(t, 1, info.Channels)

	var e struct {
		Error string `json:"error"`
	}
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/v1/net/nowhere", &e))
	assert.Equal(t, "unknown network", e.Error)
}

func TestChannel(t *testing.T) {
	srv, _ := newTestServer(t)

	var channels []string
	assert.Equal(t, http.StatusOK,
		get(t, srv, "/api/v1/net/testnet/channels", &channels))
	assert.Equal(t, []string{"#chan"}, channels)

	var ch data.ChannelSnapshot
	assert.Equal(t, http.StatusOK,
		get(t, srv, "/api/v1/net/testnet/channel/%23CHAN", &ch))
	assert.Equal(t, "#chan", ch.Name)
	assert.Equal(t, "welcome all", ch.Topic)
	assert.Equal(t, "+ov me alice", ch.Modes)
	assert.Equal(t, []data.Member{
		{Nick: "me", Modes: "o", Prefix: "@"},
		{Nick: "alice", Modes: "v", Prefix: "+"},
	}, ch.Members)

	assert.Equal(t, http.StatusNotFound,
		get(t, srv, "/api/v1/net/testnet/channel/%23none", nil))
}

func TestBanned(t *testing.T) {
	srv, d := newTestServer(t)
	d.Dispatch(irc.NewEvent(network, irc.RPL_ISUPPORT, "irc.test.net", "me",
		"CHANMODES=eIb,k,l,imnpst", "are supported"))
	d.Dispatch(irc.NewEvent(network, irc.MODE, "me!my@host.com", "#chan",
		"+be", "*!*@*.bad.host", "friend!*@*"))

	var result struct {
		Banned bool `json:"banned"`
	}
	assert.Equal(t, http.StatusOK, get(t, srv,
		"/api/v1/net/testnet/channel/%23chan/banned/nick!user@irc.bad.host",
		&result))
	assert.True(t, result.Banned)

	assert.Equal(t, http.StatusOK, get(t, srv,
		"/api/v1/net/testnet/channel/%23chan/banned/friend!user@irc.bad.host",
		&result))
	assert.False(t, result.Banned)

	assert.Equal(t, http.StatusOK, get(t, srv,
		"/api/v1/net/testnet/channel/%23chan/banned/nick!user@good.host",
		&result))
	assert.False(t, result.Banned)

	assert.Equal(t, http.StatusBadRequest, get(t, srv,
		"/api/v1/net/testnet/channel/%23chan/banned/nick", nil))
	assert.Equal(t, http.StatusNotFound, get(t, srv,
		"/api/v1/net/testnet/channel/%23none/banned/nick!user@host", nil))
}

func TestUser(t *testing.T) {
	srv, _ := newTestServer(t)

	var u data.UserSnapshot
	assert.Equal(t, http.StatusOK,
		get(t, srv, "/api/v1/net/testnet/user/me!my@host.com", &u))
	assert.Equal(t, "me", u.Nick)
	assert.Equal(t, "host.com", u.Host)
	assert.True(t, u.Current)

	var channels []string
	assert.Equal(t, http.StatusOK,
		get(t, srv, "/api/v1/net/testnet/user/alice/channels", &channels))
	assert.Equal(t, []string{"#chan"}, channels)

	var current struct {
		IsCurrent bool `json:"is_current"`
	}
	assert.Equal(t, http.StatusOK,
		get(t, srv, "/api/v1/net/testnet/is_current/ME", &current))
	assert.True(t, current.IsCurrent)

	assert.Equal(t, http.StatusNotFound,
		get(t, srv, "/api/v1/net/testnet/user/bob", nil))
	assert.Equal(t, http.StatusNotFound,
		get(t, srv, "/api/v1/net/testnet/user/bob/channels", nil))
}

func TestSnapshot(t *testing.T) {
	srv, d := newTestServer(t)

	var snap data.Snapshot
	assert.Equal(t, http.StatusOK,
		get(t, srv, "/api/v1/net/testnet/snapshot", &snap))
	assert.Equal(t, d.Session(), snap.Session)
	assert.Len(t, snap.Users, 2)
	assert.Len(t, snap.Channels, 1)
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `ircstate_users{network="testnet"} 2`)
	assert.Contains(t, buf.String(), `ircstate_events_total{command="JOIN",network="testnet"} 1`)
}

func TestHealth(t *testing.T) {
	h := NewHealth()
	_, d := newTestServer(t, dispatch.WithStateHook(h.Hook()))

	ctx := context.Background()
	resp, err := h.Check(ctx, &healthpb.HealthCheckRequest{Service: network})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	d.Dispatch(irc.NewEvent(network, irc.DISCONNECT, ""))
	resp, err = h.Check(ctx, &healthpb.HealthCheckRequest{Service: network})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)

	_, err = h.Check(ctx, &healthpb.HealthCheckRequest{Service: "nowhere"})
	assert.Error(t, err)
}
