// Package classify tags records, reviews and file sets with categorical metadata.
// Every function here is pure: identical inputs give identical outputs.
package classify

import (
	"strings"
	"unicode/utf8"

	"github.com/huangsam/govscope/internal/contract"
	"github.com/huangsam/govscope/schema"
)

// Review body length bounds for strength classification.
const (
	strongBodyLength = 200
	weakBodyLength   = 50
)

// Change size bounds for importance classification.
const (
	criticalChangeSize = 1000
	highChangeSize     = 500
	trivialChangeSize  = 10
)

// Classifier applies a fixed set of keyword tables.
type Classifier struct {
	tables compiled
}

var _ contract.RecordClassifier = &Classifier{}

// New compiles the given tables into a classifier.
func New(tables Tables) *Classifier {
	return &Classifier{tables: compile(tables)}
}

// Default returns a classifier over DefaultTables.
func Default() *Classifier {
	return New(DefaultTables())
}

// Classify returns the type and importance of a record.
// Consensus keywords are checked first and lock the primary type; later
// categories only set the primary type while it is still unknown, but every
// matching category is appended to the subtypes.
func (c *Classifier) Classify(record schema.Record) schema.Classification {
	text := strings.ToLower(record.Title + " " + record.Body + " " + strings.Join(record.Labels, " "))

	result := schema.Classification{
		PrimaryType: schema.TypeUnknown,
		Subtypes:    []string{},
		Confidence:  schema.ConfidenceUnknown,
	}
	for _, rule := range c.tables.types {
		if !matches(rule.re, text) {
			continue
		}
		result.Subtypes = append(result.Subtypes, rule.name)
		if rule.name == schema.TypeConsensus {
			result.IsConsensus = true
		}
		if result.PrimaryType == schema.TypeUnknown {
			result.PrimaryType = rule.name
			result.Confidence = c.confidence(rule, record.Labels)
		}
	}

	result.Importance = c.importance(record, text)
	return result
}

// confidence is high when a label alone matches the type, medium otherwise.
// Consensus is always medium.
func (c *Classifier) confidence(rule compiledType, labels []string) string {
	if rule.name == schema.TypeConsensus {
		return schema.ConfidenceMedium
	}
	for _, label := range labels {
		if matches(rule.re, label) {
			return schema.ConfidenceHigh
		}
	}
	return schema.ConfidenceMedium
}

// importance ranks a record on the trivial..critical scale.
func (c *Classifier) importance(record schema.Record, text string) string {
	size := record.Additions + record.Deletions

	if matches(c.tables.critical, text) || c.hasCriticalLabel(record.Labels) || size > criticalChangeSize {
		return schema.ImportanceCritical
	}
	housekeeping := matches(c.tables.housekeeping, text)
	if housekeeping && size < trivialChangeSize {
		return schema.ImportanceTrivial
	}
	if housekeeping || c.docsOnly(record.Files) {
		return schema.ImportanceLow
	}
	if size > highChangeSize {
		return schema.ImportanceHigh
	}
	return schema.ImportanceNormal
}

func (c *Classifier) hasCriticalLabel(labels []string) bool {
	for _, label := range labels {
		if _, ok := c.tables.criticalTags[strings.ToLower(strings.TrimSpace(label))]; ok {
			return true
		}
	}
	return false
}

// docsOnly reports whether every file maps to the docs domain.
// A file that maps to no domain is not documentation.
func (c *Classifier) docsOnly(files []string) bool {
	if len(files) == 0 {
		return false
	}
	for _, file := range files {
		if c.domainOf(file) != "docs" {
			return false
		}
	}
	return true
}

// ClassifyReview tags one review or comment.
// Sentiment checks positive keywords before negative ones.
func (c *Classifier) ClassifyReview(review schema.SubRecord) schema.ReviewClassification {
	body := strings.ToLower(review.Body)
	result := schema.ReviewClassification{
		Author:    review.Author,
		Sentiment: schema.SentimentNeutral,
		IsNack:    c.IsNack(body),
	}

	switch {
	case matches(c.tables.positive, body):
		result.Sentiment = schema.SentimentPositive
	case matches(c.tables.negative, body):
		result.Sentiment = schema.SentimentNegative
	}

	length := utf8.RuneCountInString(review.Body)
	switch {
	case length > strongBodyLength || matches(c.tables.intensity, body):
		result.Strength = schema.StrengthStrong
	case length < weakBodyLength:
		result.Strength = schema.StrengthWeak
	default:
		result.Strength = schema.StrengthMedium
	}

	state := strings.ToUpper(strings.TrimSpace(review.State))
	switch {
	case result.IsNack:
		result.ReviewType = schema.ReviewNack
	case state == "APPROVED" || matches(c.tables.acks, body):
		result.ReviewType = schema.ReviewApproval
	case state == "CHANGES_REQUESTED":
		result.ReviewType = schema.ReviewChangesRequest
	default:
		result.ReviewType = schema.ReviewComment
	}
	return result
}

// IsNack reports whether a body contains any NACK keyword, ignoring case.
func (c *Classifier) IsNack(body string) bool {
	body = strings.ToLower(body)
	for _, kw := range c.tables.nacks {
		if strings.Contains(body, kw) {
			return true
		}
	}
	return false
}

// MapDomains assigns each file to at most one domain, first rule wins.
// The primary domain has the most files; ties go to the domain seen first.
func (c *Classifier) MapDomains(files []string) schema.DomainExpertise {
	result := schema.DomainExpertise{Domains: []string{}}
	counts := make(map[string]int)
	for _, file := range files {
		domain := c.domainOf(file)
		if domain == "" {
			continue
		}
		if counts[domain] == 0 {
			result.Domains = append(result.Domains, domain)
		}
		counts[domain]++
	}
	best := 0
	for _, domain := range result.Domains {
		if counts[domain] > best {
			best = counts[domain]
			result.PrimaryDomain = domain
		}
	}
	if len(counts) > 0 {
		result.FileCounts = counts
	}
	return result
}

func (c *Classifier) domainOf(file string) string {
	path := strings.ToLower(file)
	for _, rule := range c.tables.domains {
		for _, pattern := range rule.Patterns {
			if strings.Contains(path, strings.ToLower(pattern)) {
				return rule.Domain
			}
		}
	}
	return ""
}
