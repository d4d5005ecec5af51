// Package ingest reads cleaned record streams and supporting tables from disk.
// Platform-specific field shapes are normalized here so later stages only see
// schema.Record values.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/schema"
	"github.com/rs/zerolog"
)

// maxLineSize bounds one JSON line; PR bodies with inline diffs can be large.
const maxLineSize = 10 * 1024 * 1024

// ErrNoRecords is returned when no stream yielded a single record.
var ErrNoRecords = errors.New("no cleaned records found")

func logger() *zerolog.Logger { return contract.Named("ingest") }

// rawSub is a review or comment as it appears on the wire.
type rawSub struct {
	Author      flexUser `json:"author"`
	User        flexUser `json:"user"`
	State       string   `json:"state"`
	Body        string   `json:"body"`
	SubmittedAt string   `json:"submitted_at"`
	CreatedAt   string   `json:"created_at"`
}

// rawRecord is the union of every stream's line format.
type rawRecord struct {
	ID           flexString `json:"id"`
	Number       flexInt    `json:"number"`
	Author       flexUser   `json:"author"`
	User         flexUser   `json:"user"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	State        string     `json:"state"`
	CreatedAt    string     `json:"created_at"`
	ClosedAt     string     `json:"closed_at"`
	MergedAt     string     `json:"merged_at"`
	MergedBy     flexUser   `json:"merged_by"`
	Labels       flexNames  `json:"labels"`
	Files        flexNames  `json:"files"`
	Additions    flexInt    `json:"additions"`
	Deletions    flexInt    `json:"deletions"`
	ChangedFiles flexInt    `json:"changed_files"`
	Commits      flexInt    `json:"commits"`
	Reviews      []rawSub   `json:"reviews"`
	Comments     []rawSub   `json:"comments"`

	// email
	MessageID flexString `json:"message_id"`
	From      flexUser   `json:"from"`
	Subject   string     `json:"subject"`
	Date      string     `json:"date"`
	InReplyTo flexString `json:"in_reply_to"`
	ThreadID  flexString `json:"thread_id"`

	// irc
	Nick      flexUser   `json:"nick"`
	Message   string     `json:"message"`
	Timestamp string     `json:"timestamp"`
	ReplyTo   flexString `json:"reply_to"`

	// release
	Tag      flexString `json:"tag"`
	Signer   flexUser   `json:"signer"`
	SignedAt string     `json:"signed_at"`
	Signers  flexNames  `json:"signers"`
}

// ParseLine decodes one JSON line of the given stream into a record.
func ParseLine(line []byte, kind schema.RecordKind) (schema.Record, error) {
	var raw rawRecord
	if err := json.Unmarshal(line, &raw); err != nil {
		return schema.Record{}, err
	}
	return raw.toRecord(kind), nil
}

// toRecord maps the wire fields of one stream onto a record.
func (r rawRecord) toRecord(kind schema.RecordKind) schema.Record {
	rec := schema.Record{
		Kind:         kind,
		ID:           string(r.ID),
		Number:       int(r.Number),
		Author:       firstNonEmpty(string(r.Author), string(r.User)),
		Title:        r.Title,
		Body:         r.Body,
		State:        strings.ToLower(strings.TrimSpace(r.State)),
		CreatedAt:    contract.ParseTimestampPtr(r.CreatedAt),
		ClosedAt:     contract.ParseTimestampPtr(r.ClosedAt),
		Labels:       []string(r.Labels),
		Additions:    int(r.Additions),
		Deletions:    int(r.Deletions),
		ChangedFiles: int(r.ChangedFiles),
		Commits:      int(r.Commits),
		Reviews:      toSubRecords(r.Reviews),
		Comments:     toSubRecords(r.Comments),
	}

	switch kind {
	case schema.PullKind:
		rec.MergedAt = contract.ParseTimestampPtr(r.MergedAt)
		rec.MergedBy = string(r.MergedBy)
		rec.Files = []string(r.Files)
		if rec.MergedAt != nil {
			rec.State = "merged"
		}
	case schema.EmailKind:
		rec.ID = firstNonEmpty(string(r.MessageID), rec.ID)
		rec.Author = firstNonEmpty(string(r.From), rec.Author)
		rec.Title = firstNonEmpty(r.Subject, rec.Title)
		rec.CreatedAt = firstTime(r.Date, r.CreatedAt)
		rec.InReplyTo = string(r.InReplyTo)
		rec.ThreadID = string(r.ThreadID)
	case schema.IRCKind:
		rec.Author = firstNonEmpty(string(r.Nick), rec.Author)
		rec.Body = firstNonEmpty(r.Message, rec.Body)
		rec.CreatedAt = firstTime(r.Timestamp, r.CreatedAt)
		rec.InReplyTo = string(r.ReplyTo)
	case schema.ReleaseKind:
		rec.Tag = string(r.Tag)
		rec.Author = firstNonEmpty(string(r.Signer), rec.Author)
		rec.CreatedAt = firstTime(r.SignedAt, r.Date, r.CreatedAt)
		rec.Signers = []string(r.Signers)
		if len(rec.Signers) == 0 && r.Signer != "" {
			rec.Signers = []string{string(r.Signer)}
		}
	}
	return rec
}

// toSubRecords normalizes nested reviews or comments.
func toSubRecords(raw []rawSub) []schema.SubRecord {
	if len(raw) == 0 {
		return nil
	}
	out := make([]schema.SubRecord, 0, len(raw))
	for _, s := range raw {
		out = append(out, schema.SubRecord{
			Author:    firstNonEmpty(string(s.Author), string(s.User)),
			State:     strings.ToUpper(strings.TrimSpace(s.State)),
			Body:      s.Body,
			CreatedAt: firstTime(s.SubmittedAt, s.CreatedAt),
		})
	}
	return out
}

// firstTime parses the first value that is a valid timestamp.
func firstTime(values ...string) *time.Time {
	for _, v := range values {
		if t := contract.ParseTimestampPtr(v); t != nil {
			return t
		}
	}
	return nil
}

// ReadStream reads JSON lines from r. Blank lines are skipped and lines that
// fail to decode are counted as malformed.
func ReadStream(r io.Reader, kind schema.RecordKind, name string) ([]schema.Record, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		records   []schema.Record
		malformed int
		lineNo    int
	)
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		rec, err := ParseLine(line, kind)
		if err != nil {
			malformed++
			logger().Warn().Err(err).Str("kind", string(kind)).Str("file", name).Int("line", lineNo).Msg("Skipping malformed line")
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, malformed, fmt.Errorf("scanning %s: %w", name, err)
	}
	return records, malformed, nil
}

// ReadRecords reads one stream file. The error wraps os.ErrNotExist when the
// file is absent.
func ReadRecords(path string, kind schema.RecordKind) ([]schema.Record, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s stream: %w", kind, err)
	}
	defer func() { _ = f.Close() }()
	return ReadStream(f, kind, path)
}

// Batch is every record read from the configured streams.
type Batch struct {
	Records   []schema.Record
	Malformed int
	Sources   []string
}

// LoadAll reads every configured stream in kind order. Missing or empty paths
// are skipped with a warning. ErrNoRecords is returned when nothing was read.
func LoadAll(files map[schema.RecordKind]string) (Batch, error) {
	var batch Batch
	for _, kind := range schema.AllRecordKinds {
		path := files[kind]
		if path == "" {
			continue
		}
		records, malformed, err := ReadRecords(path, kind)
		if errors.Is(err, os.ErrNotExist) {
			logger().Warn().Str("kind", string(kind)).Str("file", path).Msg("Stream file not found, skipping")
			continue
		}
		if err != nil {
			return batch, err
		}
		batch.Records = append(batch.Records, records...)
		batch.Malformed += malformed
		batch.Sources = append(batch.Sources, path)
		logger().Debug().Str("kind", string(kind)).Str("file", path).Int("records", len(records)).Int("malformed", malformed).Msg("Read stream")
	}
	if len(batch.Records) == 0 {
		return batch, ErrNoRecords
	}
	return batch, nil
}
