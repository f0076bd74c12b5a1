package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"f1livebot/pkg/apps/mainapp"
	"f1livebot/pkg/config"
	"f1livebot/pkg/livebot"
	"f1livebot/pkg/messenger"
	"f1livebot/pkg/notification"
	"f1livebot/pkg/openf1"
	"f1livebot/pkg/pubsub"
	"f1livebot/pkg/render"
	"f1livebot/pkg/telemetry"
	"f1livebot/pkg/webserver"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const logoutTimeout = 10 * time.Second

var configPath string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "f1livebot",
		Short:        "Keeps a live Formula 1 leaderboard updated in a Telegram chat",
		SilenceUsage: true,
		RunE:         runBotCmd,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "render",
		Short: "Fetch the live session once and print the leaderboard",
		Args:  cobra.NoArgs,
		RunE:  runRenderCmd,
	})
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(cfg.LogLevel)
	return cfg, nil
}

func newRenderer(cfg *config.Config) (render.Renderer, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return render.New(cfg.LeaderboardStyle, loc, cfg.MaxOvertakes), nil
}

func runBotCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateTelegram(); err != nil {
		return err
	}
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	loc, _ := cfg.Location()
	ctx := cmd.Context()

	telemetry.Init()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return errors.Wrap(err, "telegram login")
	}
	bot.Debug = false
	log.WithField("bot", bot.Self.UserName).Info("authorized on telegram")

	feed := pubsub.NewPubSub[string]()
	liveBot := livebot.New(
		openf1.NewClient(cfg.OpenF1BaseURL, cfg.HTTPTimeout),
		messenger.NewTelegram(bot, cfg.ChatID, renderer.ParseMode()),
		livebot.Options{
			ChatID:    cfg.ChatID,
			Renderer:  renderer,
			Location:  loc,
			Notifier:  notification.NewManager(bot, cfg.ChatID, cfg.NotifySessionStart),
			Publisher: feed,
		},
	)
	defer func() {
		logoutCtx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
		defer cancel()
		if err := liveBot.Close(logoutCtx); err != nil {
			log.WithError(err).Warn("telegram logout")
		}
	}()

	if err := liveBot.Start(ctx); err != nil {
		return errors.Wrap(err, "posting first leaderboard")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)
	defer bot.StopReceivingUpdates()

	positionsTicker := time.NewTicker(cfg.PositionsInterval)
	defer positionsTicker.Stop()
	messageTicker := time.NewTicker(cfg.MessageInterval)
	defer messageTicker.Stop()

	log.WithFields(log.Fields{
		"positions_interval": cfg.PositionsInterval,
		"message_interval":   cfg.MessageInterval,
	}).Info("start listening for updates. Press Ctrl-C to stop it")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return liveBot.Run(gctx, positionsTicker.C, messageTicker.C, updates, mainapp.NewMainApp(bot, liveBot))
	})
	if cfg.WebserverAddress != "" {
		ws := webserver.NewManager(cfg.WebserverAddress, feed)
		ws.Debug()
		g.Go(func() error {
			return ws.Serve(gctx)
		})
	}
	return g.Wait()
}

func runRenderCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	loc, _ := cfg.Location()

	liveBot := livebot.New(openf1.NewClient(cfg.OpenF1BaseURL, cfg.HTTPTimeout), nil, livebot.Options{
		Renderer: renderer,
		Location: loc,
	})
	text, err := liveBot.RenderOnce(cmd.Context())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
