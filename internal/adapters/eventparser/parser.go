package eventparser

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"posteventcalendar/internal/domain"
)

// The marker has the form
//
//	[event start="2030-06-01 18:00" end="2030-06-01 20:00" status="private" allowed-groups="staff,trust_level_2"]
//
// with every attribute optional. Attributes the marker omits stay nil in the
// candidate so the pipeline can fall back to the stored event's values.
var (
	markerRegexp = regexp.MustCompile(`\[event\s+([^\]]*)\]`)
	attrRegexp   = regexp.MustCompile(`([a-zA-Z-]+)="([^"]*)"`)
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

type parser struct{}

// New returns an EventTextParser extracting the first event marker from raw
// post text.
func New() domain.EventTextParser {
	return &parser{}
}

func (p *parser) Extract(_ context.Context, raw string) (*domain.ParsedEvent, error) {
	m := markerRegexp.FindStringSubmatch(raw)
	if m == nil {
		return nil, nil
	}
	attrs := make(map[string]string)
	for _, kv := range attrRegexp.FindAllStringSubmatch(m[1], -1) {
		attrs[strings.ToLower(kv[1])] = kv[2]
	}

	parsed := &domain.ParsedEvent{}
	if v, ok := attrs["name"]; ok {
		name := strings.TrimSpace(v)
		parsed.Name = &name
	}
	if v, ok := attrs["start"]; ok {
		t, err := parseTime(v)
		if err != nil {
			return nil, fmt.Errorf("parse start: %w", err)
		}
		parsed.StartsAt = &t
	}
	if v, ok := attrs["end"]; ok {
		t, err := parseTime(v)
		if err != nil {
			return nil, fmt.Errorf("parse end: %w", err)
		}
		parsed.EndsAt = &t
	}
	if v, ok := attrs["status"]; ok {
		status, err := domain.ParseEventStatus(strings.ToLower(strings.TrimSpace(v)))
		if err != nil {
			return nil, err
		}
		parsed.Status = &status
	}
	if v, ok := attrs["allowed-groups"]; ok {
		// Present but empty clears the roster, so the slice is non-nil.
		groups := []string{}
		for _, g := range strings.Split(v, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
		parsed.RawInvitees = groups
	}
	return parsed, nil
}

// parseTime accepts the supported layouts; values without an explicit offset
// are read as UTC.
func parseTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time value %q", v)
}
