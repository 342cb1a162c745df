package storage

import (
	"encoding/json"

	"github.com/uptrace/bun"
)

// AllGroupID is the reserved group every quick text belongs to by default.
// It cannot be deleted.
const AllGroupID = "all"

// ClipboardItem is one history row. Head of the history is the row with the
// highest (timestamp, id) pair.
type ClipboardItem struct {
	bun.BaseModel `bun:"table:clipboard_items"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	Kind      string `bun:"kind,notnull" json:"kind"`
	Text      string `bun:"text" json:"text,omitempty"`
	HTML      string `bun:"html" json:"html,omitempty"`
	ImageID   string `bun:"image_id" json:"image_id,omitempty"`
	FilesJSON string `bun:"files_json" json:"-"`
	Timestamp int64  `bun:"timestamp,notnull" json:"timestamp"`
}

// Files decodes the stored file-path list. A corrupt column reads as empty.
func (it *ClipboardItem) Files() []string {
	if it.FilesJSON == "" {
		return nil
	}
	var paths []string
	if err := json.Unmarshal([]byte(it.FilesJSON), &paths); err != nil {
		return nil
	}
	return paths
}

// SetFiles stores the path list, preserving order.
func (it *ClipboardItem) SetFiles(paths []string) {
	if len(paths) == 0 {
		it.FilesJSON = ""
		return
	}
	data, _ := json.Marshal(paths)
	it.FilesJSON = string(data)
}

// QuickText is a user-promoted reusable entry. Content carries the text for
// kind "text"; an image quick text references its own private image id.
type QuickText struct {
	bun.BaseModel `bun:"table:quick_texts"`

	ID        string `bun:"id,pk" json:"id"`
	Title     string `bun:"title,notnull" json:"title"`
	Kind      string `bun:"kind,notnull" json:"kind"`
	Content   string `bun:"content" json:"content"`
	ImageID   string `bun:"image_id" json:"image_id,omitempty"`
	GroupID   string `bun:"group_id,notnull" json:"group_id"`
	Position  int    `bun:"position,notnull,default:0" json:"position"`
	CreatedAt int64  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt int64  `bun:"updated_at,notnull" json:"updated_at"`
}

// Group is a quick-text container.
type Group struct {
	bun.BaseModel `bun:"table:groups"`

	ID        string `bun:"id,pk" json:"id"`
	Name      string `bun:"name,notnull" json:"name"`
	Icon      string `bun:"icon" json:"icon,omitempty"`
	CreatedAt int64  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt int64  `bun:"updated_at,notnull" json:"updated_at"`
}

// GroupOrder is one slot of the global group ordering vector.
type GroupOrder struct {
	bun.BaseModel `bun:"table:group_order"`

	GroupID  string `bun:"group_id,pk" json:"group_id"`
	Position int    `bun:"position,notnull" json:"position"`
}
