package models

// MediaKind classifies the shape of a fetched media item.
type MediaKind string

const (
	KindImage   MediaKind = "image"
	KindVideo   MediaKind = "video"
	KindGallery MediaKind = "gallery"
)

// SubResource is one entry of a gallery item. Either URL may be empty;
// an entry with neither URL is skipped during resolution.
type SubResource struct {
	Kind     MediaKind
	ImageURL string
	VideoURL string
}

// MediaItem is one fetched unit from a source platform: a post, reel,
// carousel or short video. ID is the platform-assigned identifier used
// for deduplication against the ledger.
type MediaItem struct {
	ID       string
	Kind     MediaKind
	TakenAt  string // ISO-like timestamp, lexicographically ordered
	Caption  string
	Likes    int
	Comments int // comment count for posts, view count for shorts
	Username string

	ImageURL string
	VideoURL string

	Resources []SubResource
}

// MetadataRecord is one persisted ledger row for one downloaded file.
// A gallery item yields one record per downloaded sub-file, all sharing
// the parent item's ID, so ID is a dedup key against new fetches rather
// than a unique key within the ledger.
type MetadataRecord struct {
	ID        string
	TakenAt   string
	Caption   string
	Likes     int
	Comments  int
	MediaPath string
	Kind      MediaKind
	Username  string
}

// RecordsFor builds one MetadataRecord per downloaded file path.
func RecordsFor(item MediaItem, paths []string) []MetadataRecord {
	records := make([]MetadataRecord, 0, len(paths))
	for _, p := range paths {
		records = append(records, MetadataRecord{
			ID:        item.ID,
			TakenAt:   item.TakenAt,
			Caption:   item.Caption,
			Likes:     item.Likes,
			Comments:  item.Comments,
			MediaPath: p,
			Kind:      item.Kind,
			Username:  item.Username,
		})
	}
	return records
}
