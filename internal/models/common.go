// server/internal/models/common.go
package models

// ActionResult is returned by every mutation.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DataResponse wraps successful reads.
type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorResponse wraps failed reads.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MonthlyCount is one bucket of the issuance chart.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// Analytics feeds the dashboard summary cards and chart.
type Analytics struct {
	TotalActive      int64          `json:"totalActive"`
	Archived         int64          `json:"archived"`
	Compliant        int64          `json:"compliant"`
	NonCompliant     int64          `json:"nonCompliant"`
	DueThisMonth     int64          `json:"dueThisMonth"`
	InspectionsToday int64          `json:"inspectionsToday"`
	IssuancesByMonth []MonthlyCount `json:"issuancesByMonth"`
}
