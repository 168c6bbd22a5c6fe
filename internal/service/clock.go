package service

import "time"

// TimestampLayout is the HH:MM form stored on chats and messages.
const TimestampLayout = "15:04"

// Clock supplies wall time for timestamps.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the local wall clock.
var SystemClock Clock = ClockFunc(time.Now)

func stamp(c Clock) string {
	return c.Now().Format(TimestampLayout)
}
