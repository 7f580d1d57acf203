// validity/parser.go
package validity

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// DefaultPattern matches Sentinel-1 auxiliary orbit identifiers such as
// S1A_OPER_AUX_POEORB_OPOD_20200121T120654_V20191231T225942_20200102T005942.
// It is anchored at the start only, anything after the stop timestamp is ignored.
var DefaultPattern = regexp.MustCompile(
	`^S1\w+_(?P<generation_date>\d{8}T\d{6})_` +
		`V(?P<start_validity>\d{8}T\d{6})_` +
		`(?P<stop_validity>\d{8}T\d{6})\w*`)

const (
	groupGeneration = "generation_date"
	groupStart      = "start_validity"
	groupStop       = "stop_validity"
)

// Parse converts identifiers into Records, in input order. A nil pattern
// selects DefaultPattern. The first identifier that fails aborts the batch.
func Parse(identifiers []string, pattern *regexp.Regexp) ([]Record, error) {
	if pattern == nil {
		pattern = DefaultPattern
	}
	out := make([]Record, 0, len(identifiers))
	for _, id := range identifiers {
		rec, err := parseOne(id, pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ParseAll is the lenient variant of Parse: it keeps every identifier that
// parses and returns all failures joined together.
func ParseAll(identifiers []string, pattern *regexp.Regexp) ([]Record, error) {
	if pattern == nil {
		pattern = DefaultPattern
	}
	var (
		out  []Record
		errs []error
	)
	for _, id := range identifiers {
		rec, err := parseOne(id, pattern)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, rec)
	}
	return out, errors.Join(errs...)
}

// ParseIdentifier parses a single identifier with DefaultPattern.
func ParseIdentifier(id string) (Record, error) {
	return parseOne(id, DefaultPattern)
}

func parseOne(id string, pattern *regexp.Regexp) (Record, error) {
	loc := pattern.FindStringSubmatchIndex(id)
	if loc == nil || loc[0] != 0 {
		return Record{}, &ParseError{ProductID: id, Reason: "no match at start of identifier"}
	}

	var times [3]time.Time
	for i, name := range []string{groupGeneration, groupStart, groupStop} {
		idx := pattern.SubexpIndex(name)
		if idx < 0 {
			return Record{}, &ParseError{ProductID: id, Reason: fmt.Sprintf("pattern has no %q group", name)}
		}
		if loc[2*idx] < 0 {
			return Record{}, &ParseError{ProductID: id, Reason: fmt.Sprintf("group %q did not participate in the match", name)}
		}
		raw := id[loc[2*idx]:loc[2*idx+1]]
		t, err := time.Parse(DateFormat, raw)
		if err != nil {
			return Record{}, &ParseError{ProductID: id, Reason: fmt.Sprintf("bad %s %q", name, raw), Err: err}
		}
		times[i] = t
	}

	return Record{
		ProductID:      id,
		GenerationTime: times[0],
		ValidityStart:  times[1],
		ValidityEnd:    times[2],
	}, nil
}
