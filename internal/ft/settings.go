package ft

// Settings carries the tunable behavior of the filing service. All
// fields have working defaults from DefaultSettings; the config layer
// overrides them from the user's config file.
type Settings struct {
	// JobPattern is the regular expression a bare job number must
	// match, without anchors.
	JobPattern string

	// OwnAddresses are the practice's own email addresses or domain
	// suffixes, used to infer direction.
	OwnAddresses []string

	// StageOrdering ranks work-stage prefixes oldest first for
	// stage-revisioned drawing filenames.
	StageOrdering []string

	// DatedFolderRoot is the name of the per-project folder that
	// holds dated correspondence folders. XXXX expands to the job
	// number.
	DatedFolderRoot string

	// DatedFolderTemplate names a single dated folder. Recognized
	// placeholders: XXXX, DIRECTION, DATE, MONTH, CONTACT,
	// DESCRIPTION.
	DatedFolderTemplate string

	// MonthGrouping nests dated folders under a YYYY-MM folder
	// when true.
	MonthGrouping bool

	// DestinationCap is the maximum number of writes a single
	// batch may make into one destination folder. Zero disables
	// the check.
	DestinationCap int

	// MinAttachmentSize is the size in bytes below which email
	// attachments are skipped unless explicitly included.
	MinAttachmentSize int64

	// MinEmbeddedImageSize is the size in bytes an embedded image
	// must reach before an email is offered for PDF rendering.
	MinEmbeddedImageSize int64

	// AutoApplyScore is the minimum keyword-rule match score that
	// files without asking. Interactive runs may still surface
	// weaker matches as suggestions.
	AutoApplyScore float64

	// PreferMappingOverPattern resolves identifier ties in favor of
	// the custom reference mapping instead of the job number
	// pattern.
	PreferMappingOverPattern bool
}

// DefaultSettings returns the settings a fresh installation runs with.
func DefaultSettings() Settings {
	return Settings{
		JobPattern:           `\d{4,5}`,
		DatedFolderRoot:      "XXXX_IMPORTS-EXPORTS",
		DatedFolderTemplate:  "XXXX_DIRECTION_DATE_CONTACT_DESCRIPTION",
		MonthGrouping:        true,
		DestinationCap:       30,
		MinAttachmentSize:    3 * 1024,
		MinEmbeddedImageSize: 20 * 1024,
		AutoApplyScore:       0.9,
	}
}
