package app

import (
	"sheetimport/domain/task"
	"sheetimport/internal/materialize"

	"github.com/montanaflynn/stats"
)

// HoursSummary describes the estimated hours column of a preview
type HoursSummary struct {
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// PreviewSummary aggregates a materialized batch for the confirmation screen
type PreviewSummary struct {
	Tasks          int                   `json:"tasks"`
	SkippedRows    int                   `json:"skipped_rows"`
	ByStatus       map[task.Status]int   `json:"by_status"`
	ByPriority     map[task.Priority]int `json:"by_priority"`
	Assigned       int                   `json:"assigned"`
	Unresolved     int                   `json:"unresolved"`
	Unassigned     int                   `json:"unassigned"`
	WithDueDate    int                   `json:"with_due_date"`
	Recipients     int                   `json:"recipients"`
	EstimatedHours HoursSummary          `json:"estimated_hours"`
}

// Summarize counts a materialized batch
func Summarize(res *materialize.Result, groups []task.NotificationGroup) PreviewSummary {
	s := PreviewSummary{
		ByStatus:   make(map[task.Status]int),
		ByPriority: make(map[task.Priority]int),
		Recipients: len(groups),
	}
	if res == nil {
		return s
	}

	s.Tasks = len(res.Tasks)
	s.SkippedRows = res.Skipped()

	var hours stats.Float64Data
	for _, t := range res.Tasks {
		s.ByStatus[t.Status]++
		s.ByPriority[t.Priority]++
		switch {
		case t.IsAssigned():
			s.Assigned++
		case t.AssignedDisplayText != "":
			s.Unresolved++
		default:
			s.Unassigned++
		}
		if t.DueDate != nil {
			s.WithDueDate++
		}
		if t.EstimatedHours != nil {
			hours = append(hours, *t.EstimatedHours)
		}
	}

	s.EstimatedHours.Count = len(hours)
	if len(hours) > 0 {
		s.EstimatedHours.Total, _ = stats.Sum(hours)
		s.EstimatedHours.Mean, _ = stats.Mean(hours)
		s.EstimatedHours.Median, _ = stats.Median(hours)
	}
	return s
}
