package models

import "time"

// ItemKind identifies one of the fixed content payload types.
type ItemKind string

const (
	KindText  ItemKind = "text"
	KindFile  ItemKind = "file"
	KindVideo ItemKind = "video"
	KindImage ItemKind = "image"
)

// KindDescriptor maps an item kind onto its storage shape. Each kind is an
// independent table sharing the base item columns plus one payload column.
type KindDescriptor struct {
	Kind          ItemKind
	Table         string
	PayloadColumn string
}

var kindRegistry = map[ItemKind]KindDescriptor{
	KindText:  {Kind: KindText, Table: "text_items", PayloadColumn: "content"},
	KindFile:  {Kind: KindFile, Table: "file_items", PayloadColumn: "file"},
	KindVideo: {Kind: KindVideo, Table: "video_items", PayloadColumn: "url"},
	KindImage: {Kind: KindImage, Table: "image_items", PayloadColumn: "url"},
}

// ResolveKind returns the descriptor for a kind name. Kind names arrive from
// untrusted request data, so anything outside the fixed set reports ok=false
// instead of panicking or reaching the database.
func ResolveKind(name string) (KindDescriptor, bool) {
	desc, ok := kindRegistry[ItemKind(name)]
	return desc, ok
}

// Kinds returns the fixed set of registered item kinds.
func Kinds() []ItemKind {
	return []ItemKind{KindText, KindFile, KindVideo, KindImage}
}

// Content is an ordered slot within a module referencing exactly one typed
// item through the (item_kind, item_id) pair.
type Content struct {
	ID       string   `db:"id" json:"id"`
	ModuleID string   `db:"module_id" json:"module_id"`
	ItemKind ItemKind `db:"item_kind" json:"item_kind"`
	ItemID   string   `db:"item_id" json:"item_id"`
	Order    int      `db:"order" json:"order"`
}

// Item carries the base attributes shared by every item kind plus the single
// kind-specific payload value.
type Item struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	Title     string    `db:"title" json:"title"`
	Payload   string    `db:"payload" json:"payload"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ContentDetail enriches Content with the referenced item's fields.
type ContentDetail struct {
	Content
	ItemTitle   string `db:"item_title" json:"item_title"`
	ItemPayload string `db:"item_payload" json:"item_payload"`
}

// ItemRequest is the payload for creating or updating a typed item. The
// payload field is interpreted per kind: inline text for text items, a stored
// media reference for file items, and an external URL for video and image
// items.
type ItemRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Payload string `json:"payload" validate:"required"`
}
