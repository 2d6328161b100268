package instagram

// Response is the top-level payload of both the profile and the media
// endpoints.
type Response struct {
	RequiresToLogin bool   `json:"requires_to_login"`
	Data            Data   `json:"data"`
	Status          string `json:"status"`
}

// Data wraps the user information in the response.
type Data struct {
	User User `json:"user"`
}

// User represents an Instagram user profile.
type User struct {
	ID                       string                   `json:"id"`
	Username                 string                   `json:"username"`
	EdgeOwnerToTimelineMedia EdgeOwnerToTimelineMedia `json:"edge_owner_to_timeline_media"`
}

// EdgeOwnerToTimelineMedia contains the user's media timeline.
type EdgeOwnerToTimelineMedia struct {
	Count int    `json:"count"`
	Edges []Edge `json:"edges"`
}

// Edge wraps a single media node.
type Edge struct {
	Node Node `json:"node"`
}

// Node represents a single media item: photo, video or sidecar.
type Node struct {
	ID                string `json:"id"`
	Typename          string `json:"__typename"`
	Shortcode         string `json:"shortcode"`
	DisplayURL        string `json:"display_url"`
	VideoURL          string `json:"video_url"`
	IsVideo           bool   `json:"is_video"`
	TakenAtTimestamp  int64  `json:"taken_at_timestamp"`
	Owner             Owner  `json:"owner"`
	EdgeMediaToCaption struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`
	EdgeLikedBy struct {
		Count int `json:"count"`
	} `json:"edge_liked_by"`
	EdgeMediaToComment struct {
		Count int `json:"count"`
	} `json:"edge_media_to_comment"`
	EdgeSidecarToChildren struct {
		Edges []Edge `json:"edges"`
	} `json:"edge_sidecar_to_children"`
}

// Owner represents the media owner.
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Caption returns the first caption text of the node, if any.
func (n *Node) Caption() string {
	if len(n.EdgeMediaToCaption.Edges) > 0 {
		return n.EdgeMediaToCaption.Edges[0].Node.Text
	}
	return ""
}
