/*
Package api serves the tracked state of every network over HTTP as JSON,
along with the prometheus metrics and a grpc health service.
*/
package api

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/aarondl/ircstate/dispatch"
	"github.com/aarondl/ircstate/irc"
)

// api provides a REST api around a registry of dispatchers
type api struct {
	reg *dispatch.Registry
}

// NetworkInfo is the summary of one network.
type NetworkInfo struct {
	Network  string   `json:"network"`
	State    string   `json:"state"`
	Session  string   `json:"session,omitempty"`
	Self     string   `json:"self,omitempty"`
	Caps     []string `json:"caps"`
	Users    int      `json:"users"`
	Channels int      `json:"channels"`
}

// NewServer creates the echo server. gatherer may be nil to leave out the
// metrics endpoint.
func NewServer(reg *dispatch.Registry, gatherer prometheus.Gatherer,
	logger log15.Logger) *echo.Echo {

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetOutput(EchoLogger{logger})
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())

	a := api{reg: reg}
	registerRoutes(a, e)

	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(
			promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return e
}

func registerRoutes(a api, e *echo.Echo) {
	e.GET("/api/v1/networks", a.networks)
	e.GET("/api/v1/net/:network", a.network)
	e.GET("/api/v1/net/:network/snapshot", a.snapshot)
	e.GET("/api/v1/net/:network/channels", a.channels)
	e.GET("/api/v1/net/:network/channel/:channel", a.channel)
	e.GET("/api/v1/net/:network/channel/:channel/banned/:host", a.banned)
	e.GET("/api/v1/net/:network/user/:user", a.user)
	e.GET("/api/v1/net/:network/user/:user/channels", a.userChannels)
	e.GET("/api/v1/net/:network/is_current/:user", a.isCurrent)
}

func errorHandler(err error, c echo.Context) {
	status := http.StatusInternalServerError
	msg := err.Error()

	if httperr, ok := err.(*echo.HTTPError); ok {
		status = httperr.Code
		if m, ok := httperr.Message.(string); ok {
			msg = m
		}
	}

	if c.Response().Committed {
		return
	}
	c.JSON(status, struct {
		Error string `json:"error"`
	}{
		Error: msg,
	})
}

func (a api) getDispatcher(c echo.Context) (*dispatch.Dispatcher, error) {
	network, err := getParam(c, "network")
	if err != nil {
		return nil, err
	}

	d, ok := a.reg.Get(network)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "unknown network")
	}
	return d, nil
}

func getParam(c echo.Context, key string) (string, error) {
	p, err := url.PathUnescape(c.Param(key))
	if err != nil || len(p) == 0 {
		return "", echo.NewHTTPError(http.StatusBadRequest,
			"missing route parameter: "+key)
	}
	return p, nil
}

func (a api) networks(c echo.Context) error {
	return c.JSON(http.StatusOK, a.reg.Networks())
}

func (a api) network(c echo.Context) error {
	d, err := a.getDispatcher(c)
	if err != nil {
		return err
	}

	info := NetworkInfo{
		Network: d.Network(),
		State:   d.ConnState().String(),
		Session: d.Session(),
		Caps:    d.Caps(),
	}
	if self := d.Self(); self != nil {
		info.Self = self.Nick
	}
	info.Users, info.Channels = d.Counts()

	return c.JSON(http.StatusOK, info)
}

func (a api) snapshot(c echo.Context) error {
	d, err := a.getDispatcher(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d.Snapshot())
}

func (a api) channels(c echo.Context) error {
	d, err := a.getDispatcher(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d.Channels())
}

func (a api) channel(c echo.Context) error {
	d, err := a.getDispatcher(c)
	if err != nil {
		return err
	}
	name, err := getParam(c, "channel")
	if err != nil {
		return err
	}

	ch, ok := d.ChannelSnapshot(name)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "channel not found")
	}
	return c.JSON(http.StatusOK, ch)
}

func (a api) banned(c echo.Context) error {
	d, err := a.getDispatcher(c)
	if err != nil {
		return err
	}
	name, err := getParam(c, "channel")
	if err != nil {
		return err
	}
	param, err := getParam(c, "host")
	if err != nil {
		return err
	}

	host := irc.Host(param)
	if !host.IsValid() {
		return echo.NewHTTPError(http.StatusBadRequest,
			"host must be nick!user@host")
	}

	banned, ok := d.IsBanned(name, host)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "channel not found")
	}
	return c.JSON(http.StatusOK, struct {
		Banned bool `json:"banned"`
	}{
		Banned: banned,
	})
}

func (a api) user(c echo.Context) error {
	d, err := a.getDispatcher(c)
	if err != nil {
		return err
	}
	nickOrHost, err := getParam(c, "user")
	if err != nil {
		return err
	}

	u, ok := d.UserSnapshot(nickOrHost)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (a api) userChannels(c echo.Context) error {
	d, err := a.getDispatcher(c)
	if err != nil {
		return err
	}
	nickOrHost, err := getParam(c, "user")
	if err != nil {
		return err
	}

	channels := d.UserChannels(nickOrHost)
	if channels == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, channels)
}

func (a api) isCurrent(c echo.Context) error {
	d, err := a.getDispatcher(c)
	if err != nil {
		return err
	}
	nickOrHost, err := getParam(c, "user")
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, struct {
		IsCurrent bool `json:"is_current"`
	}{
		IsCurrent: d.IsCurrent(nickOrHost),
	})
}

// EchoLogger sends echo's own logging to a log15 logger.
type EchoLogger struct {
	logger log15.Logger
}

func (e EchoLogger) Write(b []byte) (int, error) {
	if e.logger != nil {
		e.logger.Info(string(b))
	}
	return len(b), nil
}
