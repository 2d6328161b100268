package main

import (
	"context"
	"errors"
	"time"

	"mediasync/internal/downloader"
	"mediasync/pkg/accounts"
	"mediasync/pkg/auth"
	"mediasync/pkg/config"
	"mediasync/pkg/instagram"
	"mediasync/pkg/ledger"
	"mediasync/pkg/logger"
	"mediasync/pkg/ratelimit"
	"mediasync/pkg/resolver"
	"mediasync/pkg/syncer"
	"mediasync/pkg/youtube"
)

// app wires the configured platforms together. One cycle runs
// Instagram first, then YouTube; the two are independent and a failed
// cycle on one never blocks the other.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	instagram *syncer.Syncer
	youtube   *syncer.Syncer
}

func newApp(cfg *config.Config) *app {
	log := logger.GetLogger()

	session := resolveSession(cfg, log)
	limiter := ratelimit.NewTokenBucket(cfg.Instagram.RequestsPerMinute, time.Minute)
	igClient := instagram.NewClient(session, cfg.Download.Timeout, limiter, log)
	igDownloads := downloader.New(cfg.Download.Timeout, cfg.Download.UserAgent, log)

	ig := syncer.New(syncer.Options{
		Platform:   "instagram",
		BaseDir:    cfg.Output.BaseDirectory,
		Limit:      cfg.Instagram.PostsPerUser,
		Delay:      cfg.Download.DelayBetween,
		Fetcher:    igClient,
		Downloader: igDownloads,
		Store:      ledger.New(cfg.Output.BaseDirectory, log),
		Resolver:   resolver.New(),
		Preflights: []syncer.Preflighter{igClient},
		Logger:     log,
	})

	ytClient := youtube.NewClient(cfg.YouTube.Binary, log)
	yt := syncer.New(syncer.Options{
		Platform:   "youtube",
		BaseDir:    cfg.ShortsDirectory(),
		Limit:      cfg.YouTube.SearchResults,
		Delay:      cfg.Download.DelayBetween,
		Fetcher:    ytClient,
		Downloader: ytClient,
		Store:      ledger.New(cfg.ShortsDirectory(), log),
		Resolver:   &resolver.Resolver{VideoPrefix: "short"},
		Preflights: []syncer.Preflighter{ytClient},
		Logger:     log,
	})

	return &app{cfg: cfg, log: log, instagram: ig, youtube: yt}
}

// resolveSession builds the Instagram session from config and
// environment first, falling back to the credential stores when the
// config names a username but carries no session.
func resolveSession(cfg *config.Config, log logger.Logger) instagram.Session {
	session := instagram.Session{
		SessionID: cfg.Instagram.SessionID,
		CSRFToken: cfg.Instagram.CSRFToken,
		UserAgent: cfg.Instagram.UserAgent,
	}
	if session.SessionID != "" || cfg.Instagram.Username == "" {
		return session
	}

	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Warn("credential stores unavailable")
		return session
	}
	account, err := manager.Retrieve(cfg.Instagram.Username)
	if err != nil {
		log.WithError(err).WithField("username", cfg.Instagram.Username).Warn("no stored credentials")
		return session
	}

	session.SessionID = account.SessionID
	session.CSRFToken = account.CSRFToken
	if account.UserAgent != "" {
		session.UserAgent = account.UserAgent
	}
	return session
}

// runCycle executes one full sync cycle over both platforms. Account
// lists are reread every cycle so edits take effect without a restart.
func (a *app) runCycle(ctx context.Context) error {
	var errs []error

	igAccounts, err := accounts.LoadInstagram(a.cfg.Instagram.AccountsFile)
	if err != nil {
		a.log.WithError(err).Error("cannot read instagram accounts file")
		errs = append(errs, err)
	} else if _, err := a.instagram.Run(ctx, igAccounts); err != nil {
		errs = append(errs, err)
	}

	ytAccounts, err := accounts.LoadYouTube(a.cfg.YouTube.AccountsFile)
	if err != nil {
		a.log.WithError(err).Error("cannot read youtube accounts file")
		errs = append(errs, err)
	} else if _, err := a.youtube.Run(ctx, ytAccounts); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
