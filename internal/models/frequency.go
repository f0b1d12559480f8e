package models

import (
	"fmt"
	"time"
)

// ErrUnknownFrequency отклоняется при создании расписания, до планировщика не доходит
var ErrUnknownFrequency = fmt.Errorf("unknown sync frequency")

const (
	FrequencyEvery15Minutes = "every_15_minutes"
	FrequencyEvery30Minutes = "every_30_minutes"
	FrequencyHourly         = "hourly"
	FrequencyEvery2Hours    = "every_2_hours"
	FrequencyEvery4Hours    = "every_4_hours"
	FrequencyEvery6Hours    = "every_6_hours"
	FrequencyEvery12Hours   = "every_12_hours"
	FrequencyDaily          = "daily"
	FrequencyWeekly         = "weekly"
	FrequencyMonthly        = "monthly"
)

var frequencyIntervals = map[string]time.Duration{
	FrequencyEvery15Minutes: 15 * time.Minute,
	FrequencyEvery30Minutes: 30 * time.Minute,
	FrequencyHourly:         time.Hour,
	FrequencyEvery2Hours:    2 * time.Hour,
	FrequencyEvery4Hours:    4 * time.Hour,
	FrequencyEvery6Hours:    6 * time.Hour,
	FrequencyEvery12Hours:   12 * time.Hour,
	FrequencyDaily:          24 * time.Hour,
	FrequencyWeekly:         7 * 24 * time.Hour,
	FrequencyMonthly:        30 * 24 * time.Hour,
}

// ResolveFrequency maps a user-facing frequency label to its fixed interval.
func ResolveFrequency(label string) (time.Duration, error) {
	interval, ok := frequencyIntervals[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFrequency, label)
	}
	return interval, nil
}

// Frequencies returns the supported labels for validation and UI listings.
func Frequencies() []string {
	out := make([]string, 0, len(frequencyIntervals))
	for label := range frequencyIntervals {
		out = append(out, label)
	}
	return out
}
