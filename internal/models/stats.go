package models

import (
	"math"
	"sort"
)

// TaskStats is the completion summary of one list.
type TaskStats struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func (s TaskStats) Pending() int {
	return s.Total - s.Completed
}

// Progress returns the completed share as a whole percentage, 0 for an empty list.
func (s TaskStats) Progress() int {
	if s.Total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(s.Completed) / float64(s.Total)))
}

// StatsOf counts a full task snapshot.
func StatsOf(tasks []Task) TaskStats {
	stats := TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			stats.Completed++
		}
	}
	return stats
}

// PartitionTasks splits tasks into completed and pending, keeping their relative order.
func PartitionTasks(tasks []Task) (completed, pending []Task) {
	completed = make([]Task, 0, len(tasks))
	pending = make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed {
			completed = append(completed, t)
		} else {
			pending = append(pending, t)
		}
	}
	return completed, pending
}

// SortTasksNewestFirst orders tasks by creation time, most recent first.
func SortTasksNewestFirst(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
