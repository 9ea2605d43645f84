package notification

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Preferences is one row of a user's notification settings: the cross
// product of type and channel, each row independently toggled.
type Preferences struct {
	UserID     string    `json:"user_id"`
	Type       Type      `json:"type"`
	Channel    Channel   `json:"channel"`
	Enabled    bool      `json:"enabled"`
	Frequency  Frequency `json:"frequency"`
	QuietStart string    `json:"quiet_start,omitempty"` // "HH:MM"
	QuietEnd   string    `json:"quiet_end,omitempty"`   // "HH:MM"
	Timezone   string    `json:"timezone,omitempty"`
}

// SelectChannels picks delivery channels for a priority level from the
// user's enabled preference rows. Urgent favors immediate channels
// (push, sms, in_app); high favors push, email and in_app; lower
// priorities use whatever the user enabled. Falls back to in_app when
// no preference row is enabled.
func SelectChannels(prefs []Preferences, p Priority) []Channel {
	enabled := make(map[Channel]bool)
	for _, pref := range prefs {
		if pref.Enabled && pref.Frequency != FrequencyNever {
			enabled[pref.Channel] = true
		}
	}

	if len(enabled) == 0 {
		return []Channel{ChannelInApp}
	}

	var favored []Channel
	switch p {
	case PriorityUrgent:
		favored = []Channel{ChannelPush, ChannelSMS, ChannelInApp}
	case PriorityHigh:
		favored = []Channel{ChannelPush, ChannelEmail, ChannelInApp}
	default:
		var out []Channel
		for _, ch := range Channels {
			if enabled[ch] {
				out = append(out, ch)
			}
		}
		return out
	}

	var out []Channel
	for _, ch := range favored {
		if enabled[ch] {
			out = append(out, ch)
		}
	}
	if len(out) == 0 {
		return []Channel{ChannelInApp}
	}
	return out
}

// InQuietHours reports whether now falls inside the preference's quiet
// window. A window with start after end spans midnight (22:00-08:00
// covers 23:00 and 03:00 but not 12:00). Returns false when no window
// is configured.
func InQuietHours(now time.Time, p Preferences) (bool, error) {
	if p.QuietStart == "" || p.QuietEnd == "" {
		return false, nil
	}

	startMin, err := parseClock(p.QuietStart)
	if err != nil {
		return false, fmt.Errorf("invalid quiet_start: %w", err)
	}
	endMin, err := parseClock(p.QuietEnd)
	if err != nil {
		return false, fmt.Errorf("invalid quiet_end: %w", err)
	}

	if p.Timezone != "" {
		loc, err := time.LoadLocation(p.Timezone)
		if err != nil {
			return false, fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
		}
		now = now.In(loc)
	}

	nowMin := now.Hour()*60 + now.Minute()

	if startMin <= endMin {
		return nowMin >= startMin && nowMin < endMin, nil
	}
	// Overnight wraparound.
	return nowMin >= startMin || nowMin < endMin, nil
}

// parseClock parses a "HH:MM" string into minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%q is not in HH:MM format", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%q has an invalid hour", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%q has an invalid minute", s)
	}
	return h*60 + m, nil
}
