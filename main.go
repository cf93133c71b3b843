package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/korylprince/library-desk-server/api"
	"github.com/korylprince/library-desk-server/chatbot"
	"github.com/korylprince/library-desk-server/httpapi"
	"github.com/korylprince/library-desk-server/logging"
)

func main() {
	log := logging.New(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialect, err := api.ParseDialect(config.SQLDriver)
	if err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	db, err := api.Open(ctx, config.SQLDriver, config.SQLDSN)
	if err != nil {
		log.Error("could not open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err = api.CreateSchema(ctx, db, dialect); err != nil {
		log.Error("could not create schema", "err", err)
		os.Exit(1)
	}

	if config.Seed {
		var seeded bool
		err = api.WithTx(ctx, db, func(ctx context.Context) (err error) {
			seeded, err = api.Seed(ctx)
			return err
		})
		if err != nil {
			log.Error("could not seed database", "err", err)
			os.Exit(1)
		}
		log.Info("seed checked", "seeded", seeded)
	}

	if config.AdminEmail != "" && config.AdminPassword != "" {
		var created bool
		err = api.WithTx(ctx, db, func(ctx context.Context) (err error) {
			_, created, err = api.EnsureOperator(ctx, config.AdminEmail, config.AdminPassword, config.AdminName)
			return err
		})
		if err != nil {
			log.Error("could not ensure admin operator", "email", config.AdminEmail, "err", err)
			os.Exit(1)
		}
		log.Info("admin operator checked", "email", config.AdminEmail, "created", created)
	}

	audit, err := api.NewAuditLog(db, dialect, log)
	if err != nil {
		log.Error("could not open audit log", "err", err)
		os.Exit(1)
	}

	var store chatbot.ConversationStore
	if config.TranscriptDir == "memory" {
		store = chatbot.NewLRUStore(config.CacheMaxBytes)
	} else if store, err = chatbot.NewFileStore(config.TranscriptDir, log); err != nil {
		log.Error("could not open transcript store", "err", err)
		os.Exit(1)
	}

	if config.AIKey == "" {
		log.Warn("DESK_AIKEY is not set; model requests will likely be rejected")
	}

	client := chatbot.NewAIClient(config.AIEndpoint, config.AIModel, config.AIKey, config.aiTimeout())
	dispatcher := chatbot.NewDispatcher(db, audit, log)
	agent := chatbot.NewAgent(client, dispatcher, audit, log, config.HistoryLimit, config.aiTimeout())

	r := httpapi.NewRouter(os.Stdout, httpapi.NewMemorySessionStore(ctx, config.sessionDuration(), time.Hour, log), db, &httpapi.ChatConfig{
		Store:   store,
		Audit:   audit,
		Handler: chatbot.NewHandler(store, agent, log),
	})

	chain := handlers.CompressHandler(http.StripPrefix(config.Prefix, r))

	srv := &http.Server{
		Addr:              config.ListenAddr,
		Handler:           chain,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("could not shut down cleanly", "err", err)
		}
	}()

	log.Info("listening", "addr", config.ListenAddr, "prefix", config.Prefix, "driver", config.SQLDriver)
	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
