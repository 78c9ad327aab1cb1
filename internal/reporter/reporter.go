package reporter

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/gametrack/gametrack/internal/database"
	"github.com/gametrack/gametrack/internal/models"
	"github.com/gametrack/gametrack/pkg/utils"
)

// Reporter handles report generation
type Reporter struct {
	repo *database.Repository
}

// New creates a new reporter
func New(repo *database.Repository) *Reporter {
	return &Reporter{repo: repo}
}

// GenerateReport generates a per-game report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := GetPeriod(periodType, time.Now())
	if err != nil {
		return nil, err
	}

	records, err := r.repo.GetRecordsSince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get session records: %w", err)
	}

	byGame := make(map[string]*models.GameSummary)
	for i := range records {
		rec := &records[i]
		start, err := rec.StartTime()
		if err != nil || !start.Before(period.End) {
			if err != nil {
				log.Printf("skipping record %d: %v", rec.Sequence, err)
			}
			continue
		}
		d, err := rec.Duration()
		if err != nil {
			log.Printf("skipping record %d: %v", rec.Sequence, err)
			continue
		}

		summary, ok := byGame[rec.DisplayName]
		if !ok {
			summary = &models.GameSummary{DisplayName: rec.DisplayName}
			byGame[rec.DisplayName] = summary
		}
		summary.TotalSeconds += int64(d.Seconds())
		summary.SessionCount++
	}

	summaries := make([]models.GameSummary, 0, len(byGame))
	var totalSeconds int64
	for _, s := range byGame {
		s.TotalMinutes = float64(s.TotalSeconds) / 60.0
		s.TotalHours = float64(s.TotalSeconds) / 3600.0
		totalSeconds += s.TotalSeconds
		summaries = append(summaries, *s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].TotalSeconds > summaries[j].TotalSeconds
	})

	if totalSeconds > 0 {
		for i := range summaries {
			summaries[i].Percentage = (float64(summaries[i].TotalSeconds) / float64(totalSeconds)) * 100.0
		}
	}

	report := &models.Report{
		Period:       *period,
		Games:        summaries,
		TotalSeconds: totalSeconds,
		TotalMinutes: float64(totalSeconds) / 60.0,
		TotalHours:   float64(totalSeconds) / 3600.0,
		GeneratedAt:  time.Now(),
	}

	return report, nil
}

// GetPeriod calculates the time range for a report
func GetPeriod(periodType string, now time.Time) (*models.ReportPeriod, error) {
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.Add(24 * time.Hour)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	output := fmt.Sprintf("Play Time Report - %s\n", report.Period.Type)
	output += fmt.Sprintf("Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	output += fmt.Sprintf("Total Time: %s (%.2fh)\n\n",
		utils.FormatRoundedUnit(report.TotalSeconds), report.TotalHours)

	if len(report.Games) == 0 {
		output += "No sessions recorded for this period.\n"
		return output
	}

	output += fmt.Sprintf("%-30s %10s %10s %10s %10s\n", "Game", "Hours", "Minutes", "Sessions", "Percent")
	output += fmt.Sprintf("%s\n", "--------------------------------------------------------------------------------")

	for _, game := range report.Games {
		output += fmt.Sprintf("%-30s %10.2f %10.0f %10d %9.1f%%\n",
			truncate(game.DisplayName, 30),
			game.TotalHours,
			game.TotalMinutes,
			game.SessionCount,
			game.Percentage)
	}

	return output
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
