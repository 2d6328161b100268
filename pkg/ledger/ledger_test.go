package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediasync/pkg/models"
)

func record(id, takenAt string) models.MetadataRecord {
	return models.MetadataRecord{
		ID:        id,
		TakenAt:   takenAt,
		Caption:   "caption " + id,
		Likes:     10,
		Comments:  2,
		MediaPath: "post/alice/image_" + id + ".jpg",
		Kind:      models.KindImage,
		Username:  "alice",
	}
}

func TestKnownIDsAbsentLedger(t *testing.T) {
	l := New(t.TempDir(), nil)

	ids, err := l.KnownIDs("alice")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestLoadAllAbsentLedger(t *testing.T) {
	l := New(t.TempDir(), nil)

	records, err := l.LoadAll("alice")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMergeAndSaveRoundTrip(t *testing.T) {
	l := New(t.TempDir(), nil)

	want := record("100", "2024-05-01T10:00:00Z")
	require.NoError(t, l.MergeAndSave("alice", []models.MetadataRecord{want}, nil))

	got, err := l.LoadAll("alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])

	ids, err := l.KnownIDs("alice")
	require.NoError(t, err)
	assert.Contains(t, ids, "100")
}

func TestMergeAndSaveOrder(t *testing.T) {
	l := New(t.TempDir(), nil)

	old := []models.MetadataRecord{
		record("1", "2024-01-03T00:00:00Z"),
		record("2", "2024-01-01T00:00:00Z"),
		record("3", "2024-01-02T00:00:00Z"),
	}
	require.NoError(t, l.MergeAndSave("alice", old, nil))
	loadedOld, err := l.LoadAll("alice")
	require.NoError(t, err)

	// Unsorted new records must come out descending by timestamp,
	// followed by the old rows in their stored order.
	newRecords := []models.MetadataRecord{
		record("4", "2024-02-01T00:00:00Z"),
		record("5", "2024-02-03T00:00:00Z"),
		record("6", "2024-02-02T00:00:00Z"),
	}
	require.NoError(t, l.MergeAndSave("alice", newRecords, loadedOld))

	got, err := l.LoadAll("alice")
	require.NoError(t, err)
	require.Len(t, got, 6)

	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"5", "6", "4", "1", "2", "3"}, ids)
}

func TestMergeAndSaveStableTies(t *testing.T) {
	l := New(t.TempDir(), nil)

	same := "2024-03-01T00:00:00Z"
	newRecords := []models.MetadataRecord{
		record("a", same),
		record("b", same),
		record("c", same),
	}
	require.NoError(t, l.MergeAndSave("alice", newRecords, nil))

	got, err := l.LoadAll("alice")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestMergeAndSaveEmptyNewLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, nil)

	require.NoError(t, l.MergeAndSave("alice", []models.MetadataRecord{record("1", "2024-01-01T00:00:00Z")}, nil))

	before, err := os.ReadFile(l.Path("alice"))
	require.NoError(t, err)

	old, err := l.LoadAll("alice")
	require.NoError(t, err)
	require.NoError(t, l.MergeAndSave("alice", nil, old))

	after, err := os.ReadFile(l.Path("alice"))
	require.NoError(t, err)
	assert.Equal(t, before, after, "ledger must be byte-identical when there is nothing new")
}

func TestMergeAndSaveDropsSupersededOldRows(t *testing.T) {
	l := New(t.TempDir(), nil)

	old := []models.MetadataRecord{
		record("1", "2024-01-01T00:00:00Z"),
		record("2", "2024-01-02T00:00:00Z"),
	}
	newRecords := []models.MetadataRecord{record("2", "2024-04-01T00:00:00Z")}

	require.NoError(t, l.MergeAndSave("alice", newRecords, old))

	got, err := l.LoadAll("alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "2024-04-01T00:00:00Z", got[0].TakenAt)
	assert.Equal(t, "1", got[1].ID)
}

func TestLedgerHeaderSchema(t *testing.T) {
	l := New(t.TempDir(), nil)
	require.NoError(t, l.MergeAndSave("alice", []models.MetadataRecord{record("1", "2024-01-01T00:00:00Z")}, nil))

	data, err := os.ReadFile(l.Path("alice"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "id,taken_at,caption,likes,comments,media_url,media_type,username\n")
}

func TestGalleryRecordsShareIdentifier(t *testing.T) {
	l := New(t.TempDir(), nil)

	item := models.MediaItem{
		ID:       "77",
		Kind:     models.KindGallery,
		TakenAt:  "2024-06-01T00:00:00Z",
		Username: "alice",
	}
	records := models.RecordsFor(item, []string{
		"post/alice/carousel_77_0.jpg",
		"post/alice/carousel_77_2.mp4",
	})
	require.NoError(t, l.MergeAndSave("alice", records, nil))

	got, err := l.LoadAll("alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, got[0].ID, got[1].ID)

	ids, err := l.KnownIDs("alice")
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestNoWriteCreatesNoFile(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, nil)

	require.NoError(t, l.MergeAndSave("alice", nil, nil))

	_, err := os.Stat(filepath.Join(dir, "alice"))
	assert.True(t, os.IsNotExist(err), "empty merge must not touch the filesystem")
}
