package domain

type UrgencyCount struct {
	Urgency UrgencyLevel `json:"urgency"`
	Count   int          `json:"count"`
}

type DepartmentStat struct {
	DepartmentID int64  `json:"department_id"`
	Department   string `json:"department"`
	Total        int    `json:"total"`
	Resolved     int    `json:"resolved"`
	Pending      int    `json:"pending"`
}

type AnalyticsReport struct {
	Urgency     []UrgencyCount   `json:"urgency_distribution"`
	Departments []DepartmentStat `json:"department_stats"`
}
