package config

import (
	"fmt"
	"time"
)

// TimeLocation resolves the location timestamps are decoded in. "" and
// "Local" mean the host zone.
func (c Config) TimeLocation() (*time.Location, error) {
	return ParseLocation(c.Location)
}

// ParseLocation resolves an IANA zone name.
func ParseLocation(name string) (*time.Location, error) {
	switch name {
	case "", "Local", "local":
		return time.Local, nil
	case "UTC", "utc":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("location %q: %w", name, err)
	}
	return loc, nil
}
