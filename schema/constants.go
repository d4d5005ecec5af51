package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for analysis tracking.
	DatabaseBackend string

	// RecordKind identifies the platform stream a record came from.
	RecordKind string

	// Relation represents an interaction type used to build an influence network.
	Relation string

	// Activity represents what is counted per participant for concentration.
	Activity string

	// Role tags a participant node in an influence network.
	Role string

	// Outcome is the decision state of a pull request or issue.
	Outcome string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All analysis backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All record kinds supported.
const (
	PullKind    RecordKind = "pull"
	IssueKind   RecordKind = "issue"
	EmailKind   RecordKind = "email"
	IRCKind     RecordKind = "irc"
	ReleaseKind RecordKind = "release"
)

// All network relations supported.
const (
	ReviewRelation        Relation = "review"
	MergeRelation         Relation = "merge"
	CommunicationRelation Relation = "communication"
)

// All concentration activities supported.
const (
	MergesActivity        Activity = "merges"
	ReviewsActivity       Activity = "reviews"
	ReleasesActivity      Activity = "releases"
	ContributionsActivity Activity = "contributions"
	CommentsActivity      Activity = "comments"
	NacksActivity         Activity = "nacks"
)

// All node roles.
const (
	MaintainerRole  Role = "maintainer"
	DeveloperRole   Role = "developer"
	ParticipantRole Role = "participant"
)

// All decision outcomes.
const (
	MergedOutcome Outcome = "merged"
	ClosedOutcome Outcome = "closed"
	OpenOutcome   Outcome = "open"
)

// AllRecordKinds lists record streams in ingestion order.
var AllRecordKinds = []RecordKind{PullKind, IssueKind, EmailKind, IRCKind, ReleaseKind}

// AllRelations lists relations in their canonical report order.
var AllRelations = []Relation{ReviewRelation, MergeRelation, CommunicationRelation}

// AllActivities lists activities in their canonical report order.
var AllActivities = []Activity{
	MergesActivity, ReviewsActivity, ReleasesActivity,
	ContributionsActivity, CommentsActivity, NacksActivity,
}

// DefaultTopN lists the top-N cut-offs reported when none are configured.
var DefaultTopN = []int{1, 3, 5, 10}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid analysis backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidRelations lists all valid network relations.
var ValidRelations = map[Relation]struct{}{
	ReviewRelation:        {},
	MergeRelation:         {},
	CommunicationRelation: {},
}

// ValidActivities lists all valid concentration activities.
var ValidActivities = map[Activity]struct{}{
	MergesActivity:        {},
	ReviewsActivity:       {},
	ReleasesActivity:      {},
	ContributionsActivity: {},
	CommentsActivity:      {},
	NacksActivity:         {},
}
