package models

// Reminder is the API representation of a reminder.
type Reminder struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Message   string       `json:"message"`
	Datetime  ScheduleTime `json:"datetime"`
	Repeat    string       `json:"repeat"`
	Priority  string       `json:"priority"`
	Delivered bool         `json:"delivered"`
	CreatedAt Timestamp    `json:"created_at"`
}

// ReminderRequest is the body of reminder create and update calls.
// Datetime is a pointer so a missing field is distinguishable from a
// malformed one.
type ReminderRequest struct {
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Datetime *ScheduleTime `json:"datetime"`
	Repeat   string        `json:"repeat"`
	Priority string        `json:"priority"`
}

// CronResult is the response of the on-demand scan trigger.
type CronResult struct {
	OK        bool `json:"ok"`
	Processed int  `json:"processed"`
}
