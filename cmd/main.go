package main

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/IRT-SystemX/bcm-notifier/internal/account"
	"github.com/IRT-SystemX/bcm-notifier/internal/api"
	config "github.com/IRT-SystemX/bcm-notifier/internal/config"
	eth "github.com/IRT-SystemX/bcm-notifier/internal/eth"
	hlf "github.com/IRT-SystemX/bcm-notifier/internal/hlf"
	"github.com/IRT-SystemX/bcm-notifier/internal/horoscope"
	"github.com/IRT-SystemX/bcm-notifier/internal/inbox"
	metrics "github.com/IRT-SystemX/bcm-notifier/internal/metrics"
	"github.com/IRT-SystemX/bcm-notifier/internal/notice"
	"github.com/IRT-SystemX/bcm-notifier/notifier"
	utils "github.com/IRT-SystemX/bcm-notifier/utils"
)

var (
	port         int           = 8000
	mode         string        = "eth"
	url          string        = "ws://localhost:8546"
	apiURL       string        = "http://localhost:8545"
	path         string        = "connection-profile.json"
	orgUser      string        = "User1"
	notifyURL    string        = "https://notify.walletconnect.com"
	keysURL      string        = "https://keys.walletconnect.com"
	origin       string        = "http://localhost:8000"
	interval     time.Duration = notifier.DefaultInterval
	chainID      int64         = 1
	subscribers  string        = "subscribers.yml"
	logLevel     string        = "info"
	prettyLogs   bool          = false
	broadcast    bool          = false
	withMetrics  bool          = false
	notifySecret string        = ""
)

type source interface {
	notifier.ValueSource
	Close()
}

func connect(ctx context.Context, cfg *config.Config) (source, int64, error) {
	switch cfg.Mode {
	case "eth":
		src := eth.NewEthSource(cfg.URL)
		log.Info().Str("url", cfg.URL).Msg("Notifier is connecting")
		if err := src.Connect(ctx); err != nil {
			return nil, 0, err
		}
		log.Info().Str("url", cfg.URL).Msg("Notifier is connected")
		id, err := src.ChainID(ctx)
		if err != nil {
			log.Warn().Err(err).Int64("chainId", cfg.ChainID).Msg("Chain id lookup failed, using configured value")
			return src, cfg.ChainID, nil
		}
		return src, id.Int64(), nil
	case "rpc":
		return rpcSource{utils.NewFetcher(cfg.API)}, cfg.ChainID, nil
	case "hlf":
		src := hlf.NewHlfSource(cfg.Path, cfg.OrgUser)
		if err := src.Connect(); err != nil {
			return nil, 0, err
		}
		return src, cfg.ChainID, nil
	}
	return nil, 0, errors.New("unknown mode " + cfg.Mode)
}

type rpcSource struct {
	*utils.Fetcher
}

func (rpcSource) Close() {}

func run(cmd *cobra.Command, args []string) {
	utils.InitLogger(viper.GetString("logLevel"), viper.GetBool("prettyLogs"))

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	recipients, err := config.LoadSubscribers(cfg.Subscribers)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid subscribers")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, chain, err := connect(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("mode", cfg.Mode).Msg("Connection failed")
	}
	defer src.Close()

	client := inbox.NewClient(cfg.NotifyURL, cfg.ProjectID, cfg.AppDomain,
		inbox.WithSecret(cfg.NotifySecret),
		inbox.WithKeysURL(cfg.KeysURL),
	)
	notices := notice.NewBoard(notice.DefaultTTL, notice.DefaultCapacity)
	observers := []notifier.Observer{notices}
	if cfg.Metrics {
		exporter := metrics.NewExporter(cfg.Mode)
		prometheus.MustRegister(exporter)
		observers = append(observers, exporter)
	}
	engine := notifier.NewEngine(src, client,
		notifier.WithInterval(cfg.Interval),
		notifier.WithObserver(observers...),
		notifier.WithPayload(notifier.BlockPayload(cfg.Origin)),
		notifier.WithGreeting(notifier.GreetingPayload(cfg.Origin)),
	)
	defer engine.Stop()

	session := account.NewSession(engine, strconv.FormatInt(chain, 10))
	session.RegisterWith(client)
	session.OnRecipientSet(func(context.Context, notifier.Recipient) error {
		engine.Start(ctx)
		return nil
	})

	opts := []api.Option{}
	if cfg.Broadcast {
		opts = append(opts, api.WithBroadcast(client, recipients, notifier.GreetingPayload(cfg.Origin)))
		log.Info().Int("subscribers", len(recipients)).Msg("Broadcast enabled")
	}

	server := utils.NewServer(strconv.Itoa(cfg.Port))
	server.Bind(map[string]interface{}{
		"status": func() interface{} { return engine.Snapshot() },
	})
	if cfg.Metrics {
		server.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
	api.New(engine, session, horoscope.DefaultBook(), notices, opts...).Register(server.Echo)

	if err := server.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Server stopped")
		engine.Stop()
		os.Exit(1)
	}
}

func main() {
	cobra.OnInitialize(func() {
		viper.AutomaticEnv()
		viper.BindEnv("projectId", "PROJECT_ID")
		viper.BindEnv("appDomain", "APP_DOMAIN")
	})
	var rootCmd = &cobra.Command{
		Use:   "notifier",
		Short: "Block notifier with RESTful API",
		Run:   run,
	}
	rootCmd.Flags().String("mode", mode, "Notifier mode (eth/rpc/hlf)")
	rootCmd.Flags().Int("port", port, "Port to run server on")
	rootCmd.Flags().String("url", url, "Address web3")
	rootCmd.Flags().String("api", apiURL, "JSON-RPC http endpoint (rpc mode)")
	rootCmd.Flags().String("path", path, "Connection profile path (hlf mode)")
	rootCmd.Flags().String("orgUser", orgUser, "Organization user (hlf mode)")
	rootCmd.Flags().String("projectId", "", "Project id (or PROJECT_ID)")
	rootCmd.Flags().String("appDomain", "", "App domain (or APP_DOMAIN)")
	rootCmd.Flags().String("notifyUrl", notifyURL, "Notify API base url")
	rootCmd.Flags().String("notifySecret", notifySecret, "Notify API secret")
	rootCmd.Flags().String("keysUrl", keysURL, "Keys server url")
	rootCmd.Flags().String("origin", origin, "Public base url used for notification icons")
	rootCmd.Flags().Duration("interval", interval, "Block check interval")
	rootCmd.Flags().Int64("chainId", chainID, "Chain id of the recipient namespace")
	rootCmd.Flags().String("subscribers", subscribers, "Broadcast subscribers file")
	rootCmd.Flags().Bool("broadcast", broadcast, "Broadcast to subscribers on the echo variant")
	rootCmd.Flags().Bool("metrics", withMetrics, "Expose prometheus metrics")
	rootCmd.Flags().String("logLevel", logLevel, "Log level")
	rootCmd.Flags().Bool("prettyLogs", prettyLogs, "Human readable logs")
	for _, name := range []string{"mode", "port", "url", "api", "path", "orgUser", "projectId", "appDomain", "notifyUrl", "notifySecret", "keysUrl", "origin", "interval", "chainId", "subscribers", "broadcast", "metrics", "logLevel", "prettyLogs"} {
		viper.BindPFlag(name, rootCmd.Flags().Lookup(name))
	}
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Notifier failed")
	}
}
