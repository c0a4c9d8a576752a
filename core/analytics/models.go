package analytics

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Time ranges
const (
	RangeDay     = "day"
	RangeWeek    = "week"
	RangeMonth   = "month"
	RangeQuarter = "quarter"
)

type UserMetrics struct {
	TotalTeachers     int `json:"total_teachers"`
	TotalStudents     int `json:"total_students"`
	ActiveTeachers    int `json:"active_teachers"`
	ActiveStudents    int `json:"active_students"`
	NewUsersThisMonth int `json:"new_users_this_month"`
}

type ClassMetrics struct {
	TotalClasses     int     `json:"total_classes"`
	CompletedClasses int     `json:"completed_classes"`
	CancelledClasses int     `json:"cancelled_classes"`
	CompletionRate   float64 `json:"completion_rate"`
}

type EngagementMetrics struct {
	InvitationsSent     int     `json:"invitations_sent"`
	InvitationsAccepted int     `json:"invitations_accepted"`
	AcceptanceRate      float64 `json:"acceptance_rate"`
	AvgTimeToAccept     string  `json:"avg_time_to_accept"`
}

// Metrics is a school dashboard snapshot.
type Metrics struct {
	UserMetrics       UserMetrics       `json:"user_metrics"`
	ClassMetrics      ClassMetrics      `json:"class_metrics"`
	EngagementMetrics EngagementMetrics `json:"engagement_metrics"`
}

type Actor struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type Activity struct {
	ID           string    `json:"id"`
	ActivityType string    `json:"activity_type"`
	Description  string    `json:"description"`
	Actor        Actor     `json:"actor"`
	Timestamp    time.Time `json:"timestamp"`
}

type MetricsFilter struct {
	TimeRange     string `validate:"omitempty,oneof=day week month quarter"`
	IncludeTrends bool
}

func (f MetricsFilter) Values() url.Values {
	v := make(url.Values)
	if f.TimeRange != "" {
		v.Set("time_range", f.TimeRange)
	}
	if f.IncludeTrends {
		v.Set("include_trends", "true")
	}
	return v
}

type ActivityFilter struct {
	ActivityTypes []string
	DateFrom      time.Time
	DateTo        time.Time `validate:"omitempty,gtfield=DateFrom"`
	Page          int       `validate:"gte=0"`
	PageSize      int       `validate:"gte=0,lte=100"`
}

func (f ActivityFilter) Values() url.Values {
	v := make(url.Values)
	if len(f.ActivityTypes) > 0 {
		v.Set("activity_types", strings.Join(f.ActivityTypes, ","))
	}
	if !f.DateFrom.IsZero() {
		v.Set("date_from", f.DateFrom.UTC().Format(time.RFC3339))
	}
	if !f.DateTo.IsZero() {
		v.Set("date_to", f.DateTo.UTC().Format(time.RFC3339))
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(f.PageSize))
	}
	return v
}
