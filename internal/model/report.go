package model

type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportResolved ReportStatus = "resolved"
)

type Report struct {
	ID             int64        `json:"id"`
	ReporterID     int64        `json:"reporterId"`
	ReportedUserID int64        `json:"reportedUserId"`
	Reason         string       `json:"reason"`
	Timestamp      string       `json:"timestamp"`
	Status         ReportStatus `json:"status"`
}
