package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/botarmy/switchboard"
	"github.com/botarmy/switchboard/internal/config"
	httpAdapter "github.com/botarmy/switchboard/pkg/adapters/http"
	"github.com/botarmy/switchboard/pkg/adapters/telegram"
	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/observability"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot and the HTTP endpoints",
	Long: `Connects to Telegram and serves /healthz, /metrics and the session admin API.
In poll mode updates are long-polled; in webhook mode Telegram posts them to /telegram/webhook.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Telegram.Token == "" {
			return errors.New("telegram.token is required (set SWITCHBOARD_TELEGRAM_TOKEN)")
		}
		return runServe(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "HTTP listen address")
	serveCmd.Flags().String("mode", config.ModePoll, "Telegram update mode: poll or webhook")
	if err := settings.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
	if err := settings.BindPFlag("telegram.mode", serveCmd.Flags().Lookup("mode")); err != nil {
		panic(err)
	}
}

func runServe(cfg config.Config) error {
	logger := newLogger(cfg)

	c, err := loadContent(cfg)
	if err != nil {
		return err
	}
	st, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	tg, err := telegram.New(cfg.Telegram.Token, telegram.WithLogger(logger))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	opts := []switchboard.Option{
		switchboard.WithContent(c),
		switchboard.WithStore(st.store),
		switchboard.WithTransport(tg),
		switchboard.WithExporter(newExporter(cfg, logger)),
		switchboard.WithLogger(logger),
		switchboard.WithLifecycleHooks(metrics.Hooks()),
		switchboard.WithLifecycleHooks(observability.LogHooks(logger)),
		switchboard.WithLifecycleHooks(domain.LifecycleHooks{
			OnSessionEnd: func(_ context.Context, ev *domain.FrameEvent) {
				tg.Forget(ev.PartyID)
			},
		}),
	}
	if st.locker != nil {
		opts = append(opts, switchboard.WithLocker(st.locker, cfg.Session.LockTTL))
	}
	bot, err := switchboard.New(opts...)
	if err != nil {
		return err
	}

	handlerCfg := httpAdapter.Config{
		Sessions: bot.Sessions(),
		Health:   st.health,
		Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:   logger,
	}
	if cfg.Telegram.Mode == config.ModeWebhook {
		handlerCfg.Router = routeAcknowledged{bot: bot, tg: tg}
		handlerCfg.Decode = telegram.DecodeWebhook
		handlerCfg.WebhookSecret = cfg.Telegram.WebhookSecret
	}
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpAdapter.NewHandler(handlerCfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if cfg.Telegram.Mode == config.ModePoll {
		g.Go(func() error {
			logger.Info("Polling Telegram", "bot", tg.Username())
			err := tg.Poll(gctx, cfg.Telegram.PollTimeout, bot.Route)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srvErr := srv.Shutdown(shutdownCtx)
		return errors.Join(srvErr, bot.Close(shutdownCtx))
	})

	return g.Wait()
}

// routeAcknowledged answers button presses before queueing them, as Poll does.
type routeAcknowledged struct {
	bot *switchboard.Bot
	tg  *telegram.Bot
}

func (r routeAcknowledged) Route(ctx context.Context, u domain.Update) error {
	r.tg.Acknowledge(ctx, u)
	return r.bot.Route(ctx, u)
}
