package models

// TrackedFields are the job fields diffed across refreshes. One JobChange
// row is written per changed field per observation.
var TrackedFields = []string{"salary", "number_of_applicants", "raw_description"}

// JobChange is an append-only audit record of a single field change
type JobChange struct {
	ID        int64  `json:"id"`
	JobID     string `json:"job_id"`
	ChangedAt string `json:"changed_at"` // UTC ISO-8601
	FieldName string `json:"field_name"`
	OldValue  string `json:"old_value"`
	NewValue  string `json:"new_value"`

	// Joined job fields for reporting
	Title   string `json:"title,omitempty"`
	Company string `json:"company,omitempty"`
}
