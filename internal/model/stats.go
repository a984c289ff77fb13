package model

type SessionStats struct {
	TotalSessions                 int     `json:"totalSessions"`
	CompletedSessions             int     `json:"completedSessions"`
	InterruptedSessions           int     `json:"interruptedSessions"`
	TotalFocusTimeMinutes         int     `json:"totalFocusTimeMinutes"`
	DailyAverageFocusTimeMinutes  float64 `json:"dailyAverageFocusTimeMinutes"`
	WeeklyAverageFocusTimeMinutes float64 `json:"weeklyAverageFocusTimeMinutes"`
	LongestFocusStreak            int     `json:"longestFocusStreak"`
	MostProductiveDayOfWeek       string  `json:"mostProductiveDayOfWeek"`
	MostProductiveTimeOfDay       string  `json:"mostProductiveTimeOfDay"`
	SessionCompletionRate         float64 `json:"sessionCompletionRate"`
}
