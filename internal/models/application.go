package models

// ApplicationStatus tracks progress of a job application
type ApplicationStatus string

const (
	ApplicationApplied      ApplicationStatus = "applied"
	ApplicationInterviewing ApplicationStatus = "interviewing"
	ApplicationRejected     ApplicationStatus = "rejected"
	ApplicationOffered      ApplicationStatus = "offered"
	ApplicationAccepted     ApplicationStatus = "accepted"

	// ApplicationNotApplied is a query-only pseudo-status matching jobs with
	// no application row. It is never stored.
	ApplicationNotApplied ApplicationStatus = "not_applied"
)

// ValidApplicationStatus reports whether s is a storable status
func ValidApplicationStatus(s ApplicationStatus) bool {
	switch s {
	case ApplicationApplied, ApplicationInterviewing, ApplicationRejected, ApplicationOffered, ApplicationAccepted:
		return true
	}
	return false
}

// Application records one application per job
type Application struct {
	ID        int64             `json:"id"`
	JobID     string            `json:"job_id"`
	AppliedAt string            `json:"applied_at"` // UTC ISO-8601
	Status    ApplicationStatus `json:"status"`
	Notes     string            `json:"notes"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`

	// Joined job fields for listings
	Title    string `json:"title,omitempty"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
}
