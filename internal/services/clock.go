package services

import "time"

// Clock supplies timestamps for created/updated fields.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}
