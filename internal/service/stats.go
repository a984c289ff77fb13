package service

import (
	"sort"
	"time"

	"focusflow/internal/model"
)

const notAvailable = "N/A"

type dayPeriod struct {
	label string
	hours func(hour int) bool
}

var dayPeriods = []dayPeriod{
	{"Morning (5 AM - 12 PM)", func(h int) bool { return h >= 5 && h < 12 }},
	{"Afternoon (12 PM - 5 PM)", func(h int) bool { return h >= 12 && h < 17 }},
	{"Evening (5 PM - 10 PM)", func(h int) bool { return h >= 17 && h < 22 }},
	{"Night (10 PM - 5 AM)", func(h int) bool { return h >= 22 || h < 5 }},
}

// ComputeStats summarises sessions recorded between from and to. Focus time
// only counts completed focus sessions.
func ComputeStats(sessions []model.RemoteSession, from, to time.Time) model.SessionStats {
	stats := model.SessionStats{
		TotalSessions:           len(sessions),
		MostProductiveDayOfWeek: notAvailable,
		MostProductiveTimeOfDay: notAvailable,
	}

	focus := make([]model.RemoteSession, 0, len(sessions))
	for _, session := range sessions {
		switch session.Status {
		case model.RemoteCompleted:
			stats.CompletedSessions++
		case model.RemoteInterrupted:
			stats.InterruptedSessions++
		}
		if session.SessionType == model.ModeFocus {
			focus = append(focus, session)
		}
	}
	sort.SliceStable(focus, func(i, j int) bool {
		return focus[i].StartTime.Before(focus[j].StartTime)
	})

	focusDays := make(map[string]struct{})
	weekdayMinutes := make(map[time.Weekday]int)
	weekdayOrder := make([]time.Weekday, 0, 7)
	periodMinutes := make([]int, len(dayPeriods))

	for _, session := range focus {
		focusDays[dateKey(session.StartTime)] = struct{}{}
		if session.Status != model.RemoteCompleted {
			continue
		}

		stats.TotalFocusTimeMinutes += session.DurationMinutes

		weekday := session.StartTime.Weekday()
		if _, seen := weekdayMinutes[weekday]; !seen {
			weekdayOrder = append(weekdayOrder, weekday)
		}
		weekdayMinutes[weekday] += session.DurationMinutes

		for i, period := range dayPeriods {
			if period.hours(session.StartTime.Hour()) {
				periodMinutes[i] += session.DurationMinutes
				break
			}
		}
	}

	if len(focusDays) > 0 {
		stats.DailyAverageFocusTimeMinutes = float64(stats.TotalFocusTimeMinutes) / float64(len(focusDays))
	}

	daysInRange := int(to.Sub(from).Hours()/24) + 1
	weeks := float64(daysInRange) / 7
	if weeks < 1 {
		weeks = 1
	}
	stats.WeeklyAverageFocusTimeMinutes = float64(stats.TotalFocusTimeMinutes) / weeks

	stats.LongestFocusStreak = longestStreak(focus)

	best := -1
	for _, weekday := range weekdayOrder {
		if weekdayMinutes[weekday] > best {
			best = weekdayMinutes[weekday]
			stats.MostProductiveDayOfWeek = weekday.String()
		}
	}

	if stats.TotalFocusTimeMinutes > 0 {
		best = -1
		for i, period := range dayPeriods {
			if periodMinutes[i] > best {
				best = periodMinutes[i]
				stats.MostProductiveTimeOfDay = period.label
			}
		}
	}

	if stats.TotalSessions > 0 {
		stats.SessionCompletionRate = float64(stats.CompletedSessions) / float64(stats.TotalSessions) * 100
	}

	return stats
}

// longestStreak counts completed focus sessions on the same or consecutive
// days; any non-completed focus session breaks the streak. focus must be
// sorted by start time.
func longestStreak(focus []model.RemoteSession) int {
	current := 0
	longest := 0
	var last *time.Time
	for _, session := range focus {
		if session.Status != model.RemoteCompleted {
			current = 0
			continue
		}

		day := truncateDay(session.StartTime)
		switch {
		case last == nil || day.Equal(*last):
			current++
		case day.Sub(*last) == 24*time.Hour:
			current++
		default:
			current = 1
		}
		if current > longest {
			longest = current
		}
		last = &day
	}
	return longest
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
