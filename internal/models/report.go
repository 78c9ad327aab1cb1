package models

import "time"

type GameSummary struct {
	DisplayName  string  `json:"display_name"`
	TotalSeconds int64   `json:"total_seconds"`
	TotalMinutes float64 `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	SessionCount int     `json:"session_count"`
	Percentage   float64 `json:"percentage,omitempty"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period       ReportPeriod  `json:"period"`
	Games        []GameSummary `json:"games"`
	TotalSeconds int64         `json:"total_seconds"`
	TotalMinutes float64       `json:"total_minutes"`
	TotalHours   float64       `json:"total_hours"`
	GeneratedAt  time.Time     `json:"generated_at"`
}
