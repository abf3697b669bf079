package bridge

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseSchedule validates a 5-field cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("bridge: parse cron %q: %w", expr, err)
	}
	return sched, nil
}

// nextDelay returns how long after from the schedule next fires.
func nextDelay(sched cron.Schedule, from time.Time) time.Duration {
	d := sched.Next(from).Sub(from)
	if d < 0 {
		return 0
	}
	return d
}
