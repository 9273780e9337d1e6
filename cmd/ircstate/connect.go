package main

import (
	"context"
	"crypto/tls"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"
	"github.com/lrstanley/girc"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/aarondl/ircstate/api"
	"github.com/aarondl/ircstate/config"
	"github.com/aarondl/ircstate/data"
	"github.com/aarondl/ircstate/dispatch"
	"github.com/aarondl/ircstate/transport"
)

const (
	// reconnectTimeout is how long to wait between connection attempts.
	reconnectTimeout = 20 * time.Second
	// shutdownTimeout bounds the http server shutdown.
	shutdownTimeout = 5 * time.Second
)

func newConnectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect to the configured networks and track them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(true)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(cfg.Level())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt,
				syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, logger)
		},
	}
}

// run tracks every network until ctx is done.
func run(ctx context.Context, cfg *config.Config, logger log15.Logger) error {
	store, err := openStore(cfg.Store())
	if err != nil {
		return err
	}
	defer store.Close()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	metrics := dispatch.NewMetrics(promReg)
	health := api.NewHealth()
	reg := dispatch.NewRegistry(store, metrics)

	var wg sync.WaitGroup
	for _, name := range cfg.NetworkNames() {
		nc, err := cfg.GetNetwork(name)
		if err != nil {
			return err
		}

		opts := dispatchOptions(nc, logger, metrics, health)
		var (
			d       *dispatch.Dispatcher
			connect func(context.Context, log15.Logger)
		)
		switch nc.Client {
		case config.ClientIrcevent:
			d, connect, err = newIrcevent(nc, reg, opts)
		default:
			d, connect, err = newGirc(nc, reg, opts)
		}
		if err != nil {
			return errors.Wrap(err, name)
		}
		if err := reg.Add(d); err != nil {
			return errors.Wrap(err, name)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			connect(ctx, logger.New("network", nc.Name))
		}()
	}

	if len(cfg.HTTP) > 0 {
		e := api.NewServer(reg, promReg, logger)
		go func() {
			if err := e.Start(cfg.HTTP); err != nil {
				logger.Info("http server stopped", "err", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(),
				shutdownTimeout)
			defer cancel()
			e.Shutdown(sctx)
		}()
	}

	if len(cfg.GRPC) > 0 {
		lis, err := net.Listen("tcp", cfg.GRPC)
		if err != nil {
			return errors.Wrap(err, "grpc listen")
		}
		server := grpc.NewServer()
		health.Register(server)
		go server.Serve(lis)
		defer server.GracefulStop()
	}

	<-ctx.Done()
	wg.Wait()

	logger.Info("Shutting down...")
	return reg.Save()
}

func dispatchOptions(nc *config.Network, logger log15.Logger,
	metrics *dispatch.Metrics, health *api.Health) []dispatch.Option {

	opts := []dispatch.Option{
		dispatch.WithNetwork(nc.Name),
		dispatch.WithLogger(logger),
		dispatch.WithMetrics(metrics),
		dispatch.WithStateHook(health.Hook()),
	}
	if config.IsSet(nc.NoWhoOnJoin) {
		opts = append(opts, dispatch.WithoutWhoOnJoin())
	}
	if config.IsSet(nc.NoModeOnJoin) {
		opts = append(opts, dispatch.WithoutModeOnJoin())
	}
	if config.IsSet(nc.NoWhoisSelf) {
		opts = append(opts, dispatch.WithoutWhoisSelf())
	}
	return opts
}

// newGirc builds a girc client for the network. The returned function
// connects to the servers in turn until ctx is done.
func newGirc(nc *config.Network, locker data.Locker,
	opts []dispatch.Option) (*dispatch.Dispatcher,
	func(context.Context, log15.Logger), error) {

	caps := make(map[string][]string, len(nc.Caps))
	for _, c := range nc.Caps {
		caps[c] = nil
	}

	client := girc.New(girc.Config{
		Nick:          nc.Nick,
		User:          nc.Username,
		Name:          nc.Realname,
		ServerPass:    nc.Password,
		SSL:           config.IsSet(nc.SSL),
		SupportedCaps: caps,
	})
	if config.IsSet(nc.NoVerifyCert) {
		client.Config.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	d, err := dispatch.New(transport.GircWriter{Client: client}, nil, opts...)
	if err != nil {
		return nil, nil, err
	}
	transport.AttachGirc(client, d)

	channels := nc.Channels
	client.Handlers.Add(girc.CONNECTED, func(c *girc.Client, e girc.Event) {
		if len(channels) > 0 {
			c.Cmd.Join(channels...)
		}
	})

	servers := nc.Servers
	connect := func(ctx context.Context, logger log15.Logger) {
		go func() {
			<-ctx.Done()
			client.Close()
		}()

		for i := 0; ctx.Err() == nil; i++ {
			host, port, err := splitServer(servers[i%len(servers)])
			if err != nil {
				logger.Error("bad server", "err", err)
				return
			}

			client.Config.Server = host
			client.Config.Port = port
			logger.Info("connecting", "server", host, "port", port)
			if err := client.Connect(); err != nil {
				logger.Warn("connection ended", "err", err)
			}

			save(d, locker, logger)
			wait(ctx)
		}
	}

	return d, connect, nil
}

// newIrcevent builds an ircevent connection for the network. ircevent
// reconnects on its own so only the first server is used.
func newIrcevent(nc *config.Network, locker data.Locker,
	opts []dispatch.Option) (*dispatch.Dispatcher,
	func(context.Context, log15.Logger), error) {

	conn := &ircevent.Connection{
		Server:        nc.Servers[0],
		Nick:          nc.Nick,
		User:          nc.Username,
		RealName:      nc.Realname,
		Password:      nc.Password,
		UseTLS:        config.IsSet(nc.SSL),
		RequestCaps:   nc.Caps,
		ReconnectFreq: reconnectTimeout,
		QuitMessage:   "Shutting down",
	}
	if config.IsSet(nc.NoVerifyCert) {
		conn.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	d, err := dispatch.New(transport.IrceventWriter{Conn: conn}, nil, opts...)
	if err != nil {
		return nil, nil, err
	}
	transport.AttachIrcevent(conn, d)

	channels := nc.Channels
	conn.AddConnectCallback(func(m ircmsg.Message) {
		for _, ch := range channels {
			conn.Join(ch)
		}
	})

	connect := func(ctx context.Context, logger log15.Logger) {
		go func() {
			<-ctx.Done()
			conn.Quit()
		}()

		for ctx.Err() == nil {
			logger.Info("connecting", "server", conn.Server)
			if err := conn.Connect(); err != nil {
				logger.Warn("connect failed", "err", err)
				wait(ctx)
				continue
			}
			conn.Loop()
			save(d, locker, logger)
		}
	}

	return d, connect, nil
}

// save stores the state of a network after its connection ended.
func save(d *dispatch.Dispatcher, locker data.Locker, logger log15.Logger) {
	locker.UsingStore(func(store *data.Store) {
		if err := store.Save(d.Snapshot()); err != nil {
			logger.Warn("save failed", "err", err)
		}
	})
}

func wait(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(reconnectTimeout):
	}
}

func splitServer(server string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(server)
	if err != nil {
		return "", 0, errors.Wrapf(err, "server %q", server)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, errors.Wrapf(err, "server %q", server)
	}
	return host, port, nil
}
