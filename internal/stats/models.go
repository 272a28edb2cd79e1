package stats

// ApplicationCounts breaks applications down by ledger status.
type ApplicationCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
}

type AdminStats struct {
	TotalStudents     int64             `json:"totalStudents"`
	TotalRecruiters   int64             `json:"totalRecruiters"`
	PendingRecruiters int64             `json:"pendingRecruiters"`
	TotalJobs         int64             `json:"totalJobs"`
	ActiveJobs        int64             `json:"activeJobs"`
	ClosedJobs        int64             `json:"closedJobs"`
	Applications      ApplicationCounts `json:"applications"`
}

type RecruiterStats struct {
	TotalJobs    int64             `json:"totalJobs"`
	ActiveJobs   int64             `json:"activeJobs"`
	Applications ApplicationCounts `json:"applications"`
}

type StudentStats struct {
	Applications ApplicationCounts `json:"applications"`
}
