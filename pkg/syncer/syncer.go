// Package syncer orchestrates one sync cycle: fetch recent media per
// account, download what the ledger does not yet know, and merge the
// new metadata in.
package syncer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"mediasync/pkg/errors"
	"mediasync/pkg/logger"
	"mediasync/pkg/models"
	"mediasync/pkg/resolver"
)

// Fetcher lists the most recent media items of one account.
type Fetcher interface {
	FetchRecent(ctx context.Context, account string, limit int) ([]models.MediaItem, error)
}

// FileDownloader retrieves one remote asset to a local path.
type FileDownloader interface {
	Fetch(ctx context.Context, url, dest string) error
}

// Store is the durable per-account metadata ledger.
type Store interface {
	KnownIDs(account string) (map[string]struct{}, error)
	LoadAll(account string) ([]models.MetadataRecord, error)
	MergeAndSave(account string, newRecords, oldRecords []models.MetadataRecord) error
}

// Preflighter verifies a precondition the whole cycle depends on, such
// as valid session credentials or a required external tool.
type Preflighter interface {
	Preflight(ctx context.Context) error
}

// Stats summarizes one sync cycle.
type Stats struct {
	Accounts      int
	AccountErrors int
	Items         int
	Skipped       int
	ItemErrors    int
	Downloaded    int
	AssetErrors   int
}

// Options configures a Syncer.
type Options struct {
	Platform   string
	BaseDir    string
	Limit      int
	Delay      time.Duration
	Fetcher    Fetcher
	Downloader FileDownloader
	Store      Store
	Resolver   *resolver.Resolver
	Preflights []Preflighter
	Logger     logger.Logger
}

// Syncer runs sync cycles for one platform. Accounts are processed
// sequentially; a failing account never stops the ones after it.
type Syncer struct {
	opts  Options
	log   logger.Logger
	sleep func(ctx context.Context, d time.Duration)
}

// New creates a Syncer.
func New(opts Options) *Syncer {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	return &Syncer{
		opts:  opts,
		log:   log.WithField("platform", opts.Platform),
		sleep: sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Run executes one cycle over accounts. Preflight failures and context
// cancellation abort the cycle; any other failure is contained to the
// account it happened in.
func (s *Syncer) Run(ctx context.Context, accounts []string) (Stats, error) {
	var stats Stats

	for _, p := range s.opts.Preflights {
		if err := p.Preflight(ctx); err != nil {
			return stats, errors.Run("preflight", err)
		}
	}

	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			return stats, errors.Run("cycle interrupted", err)
		}

		stats.Accounts++
		if err := s.syncAccount(ctx, account, &stats); err != nil {
			if errors.IsScope(err, errors.ScopeRun) {
				return stats, err
			}
			stats.AccountErrors++
			s.log.WithError(err).WithField("account", account).Error("account sync failed")
			continue
		}
	}

	s.log.InfoWithFields("cycle finished", map[string]interface{}{
		"accounts":       stats.Accounts,
		"account_errors": stats.AccountErrors,
		"items":          stats.Items,
		"skipped":        stats.Skipped,
		"downloaded":     stats.Downloaded,
	})
	return stats, nil
}

func (s *Syncer) syncAccount(ctx context.Context, account string, stats *Stats) (err error) {
	// A panic in one account must not take down the cycle.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Account("sync panicked", fmt.Errorf("%v", r))
		}
	}()

	known, err := s.opts.Store.KnownIDs(account)
	if err != nil {
		return errors.Account("load known ids", err)
	}

	items, err := s.opts.Fetcher.FetchRecent(ctx, account, s.opts.Limit)
	if err != nil {
		return errors.Account("fetch recent media", err)
	}

	var newRecords []models.MetadataRecord
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return errors.Run("cycle interrupted", err)
		}

		stats.Items++
		if _, ok := known[item.ID]; ok {
			stats.Skipped++
			continue
		}

		records, downloaded, err := s.syncItem(ctx, account, item, stats)
		if err != nil {
			stats.ItemErrors++
			s.log.WithError(err).WithFields(map[string]interface{}{
				"account": account,
				"item":    item.ID,
			}).Error("item skipped")
		}
		if len(records) > 0 {
			newRecords = append(newRecords, records...)
		}
		if downloaded {
			s.sleep(ctx, s.opts.Delay)
		}
	}

	old, err := s.opts.Store.LoadAll(account)
	if err != nil {
		// Merging against an empty history would drop every old row,
		// so an unreadable ledger fails the account instead.
		return errors.Account("reload ledger", err)
	}
	if err := s.opts.Store.MergeAndSave(account, newRecords, old); err != nil {
		return errors.Account("save ledger", err)
	}

	s.log.InfoWithFields("account synced", map[string]interface{}{
		"account": account,
		"new":     len(newRecords),
	})
	return nil
}

// syncItem downloads every asset of one item, tolerating individual
// asset failures, and returns one record per file that landed on disk.
// An item whose assets all failed yields an item-scoped error; an item
// with nothing retrievable yields nothing at all.
func (s *Syncer) syncItem(ctx context.Context, account string, item models.MediaItem, stats *Stats) ([]models.MetadataRecord, bool, error) {
	assets := s.opts.Resolver.Resolve(item)
	if len(assets) == 0 {
		s.log.DebugWithFields("nothing retrievable", map[string]interface{}{
			"account": account,
			"item":    item.ID,
		})
		return nil, false, nil
	}

	var paths []string
	for _, asset := range assets {
		dest := filepath.Join(s.opts.BaseDir, account, asset.Filename)
		if err := s.opts.Downloader.Fetch(ctx, asset.URL, dest); err != nil {
			stats.AssetErrors++
			s.log.WithError(errors.Asset("download", err)).WithFields(map[string]interface{}{
				"account": account,
				"item":    item.ID,
				"file":    asset.Filename,
			}).Error("asset download failed")
			continue
		}
		stats.Downloaded++
		paths = append(paths, filepath.Join(account, asset.Filename))
	}

	if len(paths) == 0 {
		return nil, false, errors.Item("download assets", fmt.Errorf("all %d assets failed", len(assets)))
	}
	return models.RecordsFor(item, paths), true, nil
}
