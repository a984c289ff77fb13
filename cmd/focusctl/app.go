package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"

	"focusflow/internal/config"
	"focusflow/internal/ledger"
	"focusflow/internal/localstore"
	"focusflow/internal/notify"
	"focusflow/internal/reconcile"
	"focusflow/internal/remote"
	"focusflow/internal/timer"
)

// app is the client object graph shared by every command.
type app struct {
	cfg        config.ClientConfig
	db         *sql.DB
	store      *localstore.Store
	ledger     *ledger.Ledger
	remote     *remote.Client
	reconciler *reconcile.Reconciler
	engine     *timer.Engine
	clock      timer.Clock
}

type appOptions struct {
	// Console receives a line per resolved session when set.
	Console io.Writer
	// LogOutput receives reconciler logs; nil discards them.
	LogOutput io.Writer
}

// openApp wires the client. Every resolved session schedules a
// reconciliation.
func openApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.LoadClient(configPath)
	if err != nil {
		return nil, err
	}

	database, err := localstore.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	logOutput := opts.LogOutput
	if logOutput == nil {
		logOutput = io.Discard
	}

	a := &app{
		cfg:    cfg,
		db:     database,
		store:  localstore.New(database),
		ledger: ledger.New(database),
		remote: remote.NewClient(cfg.ServerURL, cfg.RequestTimeout),
		clock:  timer.SystemClock(),
	}
	a.reconciler = reconcile.New(a.ledger, a.remote, a.store.Token, reconcile.Options{
		FetchLimit: cfg.FetchLimit,
		Logger:     log.New(logOutput, "focusctl: ", log.LstdFlags),
	})

	timerCfg, err := a.store.LoadTimerConfig(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	state, err := a.store.LoadTimerState(ctx, timerCfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	notifiers := notify.Multi{a.reconciler}
	if opts.Console != nil {
		notifiers = append(notify.Multi{notify.NewConsole(opts.Console)}, notifiers...)
	}
	a.engine, err = timer.NewEngine(timerCfg, state, timer.Options{
		Clock:    a.clock,
		Ledger:   a.ledger,
		Store:    a.store,
		Notifier: notifiers,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() {
	_ = a.db.Close()
}

// token returns the stored credential or a usage error when signed out.
func (a *app) token(ctx context.Context) (string, error) {
	token, err := a.store.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("not signed in, run focusctl login first")
	}
	return token, nil
}
