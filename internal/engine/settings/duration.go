package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Duration serializes as "<N>s" when it is a whole number of seconds and as
// "<N>ms" otherwise.
type Duration time.Duration

func Seconds(n int64) Duration { return Duration(time.Duration(n) * time.Second) }

func Millis(n int64) Duration { return Duration(time.Duration(n) * time.Millisecond) }

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string {
	ms := time.Duration(d).Milliseconds()
	if ms%1000 == 0 {
		return strconv.FormatInt(ms/1000, 10) + "s"
	}
	return strconv.FormatInt(ms, 10) + "ms"
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
