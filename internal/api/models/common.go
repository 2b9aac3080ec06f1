package models

import (
	"fmt"
	"time"
)

// ScheduleLayout is the wall-clock datetime format used on the wire and by
// the browser's datetime-local inputs. No timezone: scheduled times are
// interpreted in the server's local time.
const ScheduleLayout = "2006-01-02T15:04"

// scheduleInputLayouts are the formats accepted on input.
var scheduleInputLayouts = []string{
	ScheduleLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ScheduleTime is a local wall-clock timestamp with custom JSON formatting.
type ScheduleTime time.Time

// MarshalJSON implements json.Marshaler for ScheduleTime.
func (t ScheduleTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(ScheduleLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for ScheduleTime.
func (t *ScheduleTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid datetime %s", data)
	}
	s := string(data[1 : len(data)-1])
	for _, layout := range scheduleInputLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			*t = ScheduleTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("invalid datetime %q, expected %s", s, ScheduleLayout)
}

// Time returns the underlying time.Time.
func (t ScheduleTime) Time() time.Time {
	return time.Time(t)
}

// Timestamp is a helper type for server-set times with RFC3339 formatting.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler for Timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid timestamp %s", data)
	}
	parsed, err := time.Parse(time.RFC3339, string(data[1:len(data)-1]))
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}
