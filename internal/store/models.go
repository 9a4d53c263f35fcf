package store

import "errors"

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// Keys of the settings seeded by the first migration.
const (
	SettingDailyGoal   = "daily_goal" // minutes
	SettingGranularity = "granularity"
	SettingDomain      = "domain"
)

type Setting struct {
	Key   string
	Value string
}
