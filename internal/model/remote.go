package model

import (
	"fmt"
	"math"
	"time"
)

type RemoteStatus string

const (
	RemoteCompleted   RemoteStatus = "completed"
	RemoteInterrupted RemoteStatus = "interrupted"
	RemoteSkipped     RemoteStatus = "skipped"
)

func (s RemoteStatus) Valid() bool {
	return s == RemoteCompleted || s == RemoteInterrupted || s == RemoteSkipped
}

// RemoteSession is a session record as the remote store keeps it. Durations
// are whole minutes.
type RemoteSession struct {
	ID                 string       `json:"id"`
	UserID             string       `json:"userId,omitempty"`
	SessionType        SessionMode  `json:"sessionType"`
	DurationMinutes    int          `json:"durationMinutes"`
	Status             RemoteStatus `json:"status"`
	StartTime          time.Time    `json:"startTime"`
	EndTime            time.Time    `json:"endTime"`
	RelatedTaskID      *string      `json:"relatedTaskId,omitempty"`
	Notes              *string      `json:"notes,omitempty"`
	InterruptionReason *string      `json:"interruptionReason,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
}

// DurationMinutes converts seconds to the remote unit, rounding to the
// nearest minute with a floor of one.
func DurationMinutes(seconds int) int {
	minutes := int(math.Round(float64(seconds) / 60))
	if minutes < 1 {
		return 1
	}
	return minutes
}

func ToRemoteSession(s Session) (RemoteSession, error) {
	if s.Pending() || s.EndedAt == nil {
		return RemoteSession{}, fmt.Errorf("session %s is not resolved", s.ID)
	}

	status := RemoteCompleted
	if s.Outcome == OutcomeInterrupted {
		status = RemoteInterrupted
	}

	return RemoteSession{
		SessionType:     s.Mode,
		DurationMinutes: DurationMinutes(s.ActualDurationSeconds),
		Status:          status,
		StartTime:       s.StartedAt.UTC(),
		EndTime:         s.EndedAt.UTC(),
	}, nil
}

func FromRemoteSession(rs RemoteSession) Session {
	seconds := rs.DurationMinutes * 60
	endedAt := rs.EndTime.UTC()
	return Session{
		ID:                     rs.ID,
		Mode:                   rs.SessionType,
		StartedAt:              rs.StartTime.UTC(),
		EndedAt:                &endedAt,
		PlannedDurationSeconds: seconds,
		ActualDurationSeconds:  seconds,
		Outcome:                outcomeFromRemote(rs.Status),
		SyncStatus:             SyncSynced,
	}
}

// OverlayRemote keeps the local record but takes outcome and actual duration
// from the confirmed remote copy.
func OverlayRemote(local Session, rs RemoteSession) Session {
	merged := local
	merged.Outcome = outcomeFromRemote(rs.Status)
	merged.ActualDurationSeconds = rs.DurationMinutes * 60
	merged.SyncStatus = SyncSynced
	return merged
}

func outcomeFromRemote(status RemoteStatus) Outcome {
	if status == RemoteCompleted {
		return OutcomeCompleted
	}
	return OutcomeInterrupted
}
