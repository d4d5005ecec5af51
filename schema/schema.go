// Package schema has the models shared by every stage of govscope: cleaned
// records, enriched records, metric results and the result envelope.
package schema

import (
	"strconv"
	"time"
)

// SubRecord is a review or comment nested inside a pull request or issue.
type SubRecord struct {
	Author    string     `json:"author"`
	State     string     `json:"state,omitempty"`
	Body      string     `json:"body,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Record is one cleaned activity record from any platform stream.
// Timestamps are parsed at ingestion and are nil when absent or unparseable.
type Record struct {
	Kind         RecordKind  `json:"kind"`
	ID           string      `json:"id,omitempty"`
	Number       int         `json:"number,omitempty"`
	Author       string      `json:"author"`
	Title        string      `json:"title,omitempty"`
	Body         string      `json:"body,omitempty"`
	State        string      `json:"state,omitempty"`
	CreatedAt    *time.Time  `json:"created_at,omitempty"`
	ClosedAt     *time.Time  `json:"closed_at,omitempty"`
	MergedAt     *time.Time  `json:"merged_at,omitempty"`
	MergedBy     string      `json:"merged_by,omitempty"`
	Labels       []string    `json:"labels,omitempty"`
	Files        []string    `json:"files,omitempty"`
	Additions    int         `json:"additions,omitempty"`
	Deletions    int         `json:"deletions,omitempty"`
	ChangedFiles int         `json:"changed_files,omitempty"`
	Commits      int         `json:"commits,omitempty"`
	Reviews      []SubRecord `json:"reviews,omitempty"`
	Comments     []SubRecord `json:"comments,omitempty"`

	// InReplyTo is the parent message id for emails and the addressed nick for IRC.
	InReplyTo string `json:"in_reply_to,omitempty"`
	ThreadID  string `json:"thread_id,omitempty"`

	// Tag and Signers are only set on release records.
	Tag     string   `json:"tag,omitempty"`
	Signers []string `json:"signers,omitempty"`
}

// HasStableID reports whether the record carries a join key.
func (r Record) HasStableID() bool {
	return r.Number > 0 || r.ID != "" || r.Tag != ""
}

// Key returns the stable identifier used in logs and joins.
func (r Record) Key() string {
	switch {
	case r.Tag != "":
		return r.Tag
	case r.ID != "":
		return r.ID
	case r.Number > 0:
		return strconv.Itoa(r.Number)
	default:
		return ""
	}
}

// IsMerged reports whether the record has a merge timestamp.
func (r Record) IsMerged() bool {
	return r.MergedAt != nil
}
