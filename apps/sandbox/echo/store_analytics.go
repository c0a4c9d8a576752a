package echoapi

import (
	"sort"
	"time"

	"github.com/trezcool/masomo-client/core/analytics"
	"github.com/trezcool/masomo-client/core/task"
	"github.com/trezcool/masomo-client/core/user"
)

var rangeDays = map[string]int{
	analytics.RangeDay:     1,
	analytics.RangeWeek:    7,
	analytics.RangeMonth:   30,
	analytics.RangeQuarter: 90,
}

// metrics summarises the whole sandbox for a school dashboard.
func (s *Store) metrics(timeRange string) analytics.Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	days, ok := rangeDays[timeRange]
	if !ok {
		days = rangeDays[analytics.RangeMonth]
	}
	now := s.now()
	since := now.AddDate(0, 0, -days)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var m analytics.Metrics
	for _, acc := range s.accounts {
		p := acc.profile
		switch p.UserType {
		case user.RoleTeacher:
			m.UserMetrics.TotalTeachers++
			if p.DateJoined.After(since) {
				m.UserMetrics.ActiveTeachers++
			}
		case user.RoleStudent:
			m.UserMetrics.TotalStudents++
			if p.DateJoined.After(since) {
				m.UserMetrics.ActiveStudents++
			}
		}
		if !p.DateJoined.Before(monthStart) {
			m.UserMetrics.NewUsersThisMonth++
		}
	}

	for _, t := range s.tasks {
		if t.CreatedAt.Before(since) {
			continue
		}
		m.ClassMetrics.TotalClasses++
		switch t.Status {
		case task.StatusCompleted:
			m.ClassMetrics.CompletedClasses++
		case task.StatusCancelled:
			m.ClassMetrics.CancelledClasses++
		}
	}
	if m.ClassMetrics.TotalClasses > 0 {
		m.ClassMetrics.CompletionRate = float64(m.ClassMetrics.CompletedClasses) / float64(m.ClassMetrics.TotalClasses) * 100
	}
	m.EngagementMetrics.AvgTimeToAccept = "0h"
	return m
}

func (s *Store) activities(schoolID int, types map[string]bool, from, to time.Time) []analytics.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]analytics.Activity, 0)
	for _, a := range s.activity[schoolID] {
		if len(types) > 0 && !types[a.ActivityType] {
			continue
		}
		if (!from.IsZero() && a.Timestamp.Before(from)) || (!to.IsZero() && a.Timestamp.After(to)) {
			continue
		}
		res = append(res, a)
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Timestamp.After(res[j].Timestamp) })
	return res
}
