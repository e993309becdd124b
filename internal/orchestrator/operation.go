package orchestrator

// Kind identifies which of the fixed operation variants a Request carries.
type Kind string

const (
	AddToSection      Kind = "AddToSection"
	RemoveFromSection Kind = "RemoveFromSection"
	ReplaceInSection  Kind = "ReplaceInSection"
	UpdateFrontMatter Kind = "UpdateFrontMatter"
	CreateNote        Kind = "CreateNote"
	DeleteNote        Kind = "DeleteNote"
	ToggleTask        Kind = "ToggleTask"
)

// Context is the shared record every operation carries, independent of its
// kind: the vault root, the note it targets, and the commit policy.
type Context struct {
	Vault             string
	NotePath          string
	Commit            bool
	CommitPrefix      string
	ActionDescription string
	Section           string
}

// Request is the typed variant dispatched by the orchestrator: exactly one
// of its payload fields is meaningful, selected by Kind.
type Request struct {
	Kind Kind

	// AddToSection / RemoveFromSection / ReplaceInSection payloads.
	Content     string // AddToSection: text to format and insert
	Format      string // AddToSection: "plain"|"bullet"|"task"|"numbered"|"timestamp-bullet"
	Position    string // AddToSection: "append"|"prepend"
	MatchText   string // RemoveFromSection: literal text of the line(s) to remove
	Pattern     string // ReplaceInSection: user-supplied regex (ReDoS-vetted)
	Replacement string // ReplaceInSection: replacement text

	// UpdateFrontMatter payload: keys to set/overwrite; a nil value deletes
	// the key.
	FrontMatterPatch map[string]any

	// CreateNote payload.
	InitialFrontMatter map[string]any
	InitialContent     string

	// ToggleTask payload: literal text of the task line to flip.
	TaskText string
}

// Outcome is what every operation produces before the orchestrator persists
// it: updated content and/or front matter, a human message, and warnings
// that do not block success (e.g. a RemoveFromSection that matched no line
// is a warning, while a missing section is an error instead).
type Outcome struct {
	UpdatedFrontMatter map[string]any
	UpdatedContent     string
	Message            string
	Warnings           []string
}

// Result is the orchestrator's final, fully-resolved response.
type Result struct {
	Outcome
	GitError string
	ExitCode int
}
