package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldContainer is the standardized structured logging key for resource container identifiers.
	FieldContainer = "container"
	// FieldLanguage is the standardized structured logging key for language slugs.
	FieldLanguage = "language"
	// FieldProject is the standardized structured logging key for project slugs.
	FieldProject = "project"
	// FieldSessionID is the standardized structured logging key for import session identifiers.
	FieldSessionID = "session_id"
)
