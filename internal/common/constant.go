package common

const (
	// DefaultMetaPrefix namespaces metadata keys as "_wpgp_<key>".
	DefaultMetaPrefix = "wpgp"

	// LegacyCommitMetaKey holds the pre-1.0 composite commit metadata.
	LegacyCommitMetaKey = "_wpgp_commit_meta"

	// PostTypeRepo is the record type shared by repos and blobs.
	PostTypeRepo = "gistpen"

	// PostTypeRevision is the record type shared by commits and states.
	PostTypeRevision = "revision"

	// StatusTrash is the status of soft-deleted records.
	StatusTrash = "trash"

	// StatusInherit is the default status of commits and states.
	StatusInherit = "inherit"

	// LanguageNone is the slug of the placeholder language.
	LanguageNone = "none"
)

// MetaKey namespaces key for the given installation prefix.
func MetaKey(prefix, key string) string {
	return "_" + prefix + "_" + key
}

// LanguageTaxonomy returns the taxonomy name holding language terms.
func LanguageTaxonomy(prefix string) string {
	return prefix + "_language"
}
