package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"mediasync/pkg/logger"
	"mediasync/pkg/models"
)

// FileName is the per-account ledger file name.
const FileName = "media_metadata.csv"

// Columns is the fixed ledger schema. It is declared up front instead
// of being derived from the first written record, so the file layout
// cannot drift between runs.
var Columns = []string{
	"id", "taken_at", "caption", "likes", "comments",
	"media_url", "media_type", "username",
}

// Ledger is the per-account durable record store. Each account owns
// one delimited text file under <baseDir>/<account>/. The ledger is
// read fully and rewritten fully on merge; there are no concurrent
// writers in the single-process model.
type Ledger struct {
	baseDir string
	logger  logger.Logger
}

// New creates a ledger rooted at baseDir.
func New(baseDir string, log logger.Logger) *Ledger {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Ledger{baseDir: baseDir, logger: log}
}

// Path returns the ledger file path for an account.
func (l *Ledger) Path(account string) string {
	return filepath.Join(l.baseDir, account, FileName)
}

// KnownIDs returns every identifier currently persisted for the
// account. An absent ledger yields an empty set, not an error.
func (l *Ledger) KnownIDs(account string) (map[string]struct{}, error) {
	records, err := l.LoadAll(account)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		ids[r.ID] = struct{}{}
	}
	return ids, nil
}

// LoadAll returns every persisted record for the account in file
// order. An absent ledger yields an empty slice, not an error.
func (l *Ledger) LoadAll(account string) ([]models.MetadataRecord, error) {
	file, err := os.Open(l.Path(account))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	// Skip the header row.
	records := make([]models.MetadataRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(Columns) {
			return nil, fmt.Errorf("malformed ledger row: expected %d fields, got %d", len(Columns), len(row))
		}
		records = append(records, fromRow(row))
	}
	return records, nil
}

// MergeAndSave writes newRecords sorted descending by timestamp (ties
// keep their original relative order), followed by oldRecords
// unchanged, as the complete replacement ledger content. With no new
// records nothing is written and the old content is untouched. Old
// rows whose identifier reappears in newRecords are dropped so a
// ledger never accumulates duplicate-id rows.
func (l *Ledger) MergeAndSave(account string, newRecords, oldRecords []models.MetadataRecord) error {
	if len(newRecords) == 0 {
		l.logger.DebugWithFields("no new records to save", map[string]interface{}{
			"account": account,
		})
		return nil
	}

	sorted := make([]models.MetadataRecord, len(newRecords))
	copy(sorted, newRecords)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TakenAt > sorted[j].TakenAt
	})

	newIDs := make(map[string]struct{}, len(sorted))
	for _, r := range sorted {
		newIDs[r.ID] = struct{}{}
	}

	merged := sorted
	for _, r := range oldRecords {
		if _, dup := newIDs[r.ID]; dup {
			continue
		}
		merged = append(merged, r)
	}

	if err := l.write(account, merged); err != nil {
		return err
	}

	l.logger.InfoWithFields("ledger updated", map[string]interface{}{
		"account": account,
		"new":     len(newRecords),
		"total":   len(merged),
	})
	return nil
}

// write replaces the ledger file content via a temp file and rename,
// so an encode error never truncates a previously valid ledger.
func (l *Ledger) write(account string, records []models.MetadataRecord) error {
	path := l.Path(account)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create account directory: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary ledger file: %w", err)
	}

	writer := csv.NewWriter(file)
	err = writer.Write(Columns)
	for _, r := range records {
		if err != nil {
			break
		}
		err = writer.Write(toRow(r))
	}
	if err == nil {
		writer.Flush()
		err = writer.Error()
	}
	if err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write ledger rows: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close ledger file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}

	return nil
}

func toRow(r models.MetadataRecord) []string {
	return []string{
		r.ID,
		r.TakenAt,
		r.Caption,
		strconv.Itoa(r.Likes),
		strconv.Itoa(r.Comments),
		r.MediaPath,
		string(r.Kind),
		r.Username,
	}
}

func fromRow(row []string) models.MetadataRecord {
	likes, _ := strconv.Atoi(row[3])
	comments, _ := strconv.Atoi(row[4])
	return models.MetadataRecord{
		ID:        row[0],
		TakenAt:   row[1],
		Caption:   row[2],
		Likes:     likes,
		Comments:  comments,
		MediaPath: row[5],
		Kind:      models.MediaKind(row[6]),
		Username:  row[7],
	}
}
