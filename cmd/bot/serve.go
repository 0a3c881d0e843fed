package main

import (
	"context"
	"fmt"

	"github.com/ad/autoreply-bot/internal/bot"
	"github.com/ad/autoreply-bot/internal/config"
	"github.com/ad/autoreply-bot/internal/domain"
	"github.com/ad/autoreply-bot/internal/locale"
	"github.com/ad/autoreply-bot/internal/logger"
	"github.com/ad/autoreply-bot/internal/storage"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot with long polling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel))
	log.Info("Starting auto-reply bot", "log_level", cfg.LogLevel, "language", cfg.Language)

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	localizer, err := locale.NewLocalizer(ctx, locale.NewLocale(cfg.Language))
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	partitioner, err := newPartitioner(cfg)
	if err != nil {
		return err
	}

	repo := storage.NewTriggerRepository(st.queue, log.With("component", "trigger_repository"))
	sessions := storage.NewFSMStorage(st.queue, log, cfg.SessionTTL)

	// Cleanup stale FSM sessions on startup
	if _, err := sessions.CleanupStale(ctx); err != nil {
		log.Error("Failed to cleanup stale FSM sessions", "error", err)
	}

	catalog := domain.NewCatalog(repo, partitioner, cfg.PageSize, log.With("component", "catalog"))
	resolver := domain.NewResolver(repo, log.With("component", "resolver"))

	// The default handler receives media as well as text, so it is wired
	// before the handler exists
	var handler *bot.BotHandler
	b, err := tgbot.New(cfg.TelegramToken,
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if handler != nil {
				handler.HandleMessage(ctx, b, update)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	wizard := bot.NewTriggerWizardFSM(sessions, b, repo, partitioner, localizer, log)
	browser := bot.NewBrowser(b, catalog, localizer, log.With("component", "browser"))
	handler = bot.NewBotHandler(b, cfg, wizard, browser, resolver, catalog, localizer, log)

	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypePrefix, handler.HandleStart)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/add", tgbot.MatchTypeExact, handler.HandleAdd)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/cancel", tgbot.MatchTypeExact, handler.HandleCancel)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/triggers", tgbot.MatchTypeExact, handler.HandleTriggers)
	b.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, "", tgbot.MatchTypePrefix, handler.HandleCallback)
	log.Info("Command handlers registered", "admins", len(cfg.AdminUserIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting bot polling")
		b.Start(gctx)
		return nil
	})
	g.Go(func() error {
		return sessions.RunSweeper(gctx, cfg.SessionSweepInterval)
	})

	log.Info("Bot is running. Press Ctrl+C to stop.")
	err = g.Wait()
	log.Info("Bot stopped")
	return err
}
