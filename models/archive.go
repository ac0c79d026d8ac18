package models

type JobState string

const (
	JobStateRunning    JobState = "running"
	JobStateDraining   JobState = "draining"
	JobStateTerminated JobState = "terminated"
	JobStateReaped     JobState = "reaped"
)

// ArchiveRequest описывает запрошенную клиентом поддиректорию.
type ArchiveRequest struct {
	Name      string `json:"name"`
	RequestID string `json:"request_id,omitempty"`
}
