// Package converter implements the four-step manual converter: source zone,
// wall-clock date-time, target zone, result.
package converter

import (
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/worldtz/pkg/catalog"
	"github.com/codeGROOVE-dev/worldtz/pkg/tzconvert"
)

// Defaults preselected in the converter.
const (
	DefaultSource = "Asia/Shanghai"
	DefaultTarget = "America/New_York"
)

// Loader resolves IANA identifiers.
type Loader interface {
	Load(zone string) (*time.Location, error)
}

// Request is the converter input. Input is an HTML datetime-local value read
// as wall-clock time in Source.
type Request struct {
	Source string `json:"source"`
	Input  string `json:"input"`
	Target string `json:"target"`
}

// Result is the converted time in the target zone.
type Result struct {
	Time         time.Time `json:"time"`
	Target       string    `json:"target"`
	Local        string    `json:"local"`
	Display      string    `json:"display"`
	Abbreviation string    `json:"abbreviation"`
	DiffHours    float64   `json:"diff_hours"`
	Later        bool      `json:"later"`
}

// Converter converts wall-clock times between zones.
type Converter struct {
	zones Loader
}

// New creates a Converter.
func New(zones Loader) *Converter {
	return &Converter{zones: zones}
}

// DefaultRequest returns the converter's initial state: default zones and the
// current wall-clock time in the source zone, to the minute.
func (c *Converter) DefaultRequest(now time.Time) Request {
	req := Request{Source: DefaultSource, Target: DefaultTarget}
	if loc, err := c.zones.Load(DefaultSource); err == nil {
		req.Input = now.In(loc).Format(tzconvert.InputLayout)
	}
	return req
}

// Convert reads req.Input in req.Source and re-expresses it in req.Target.
func (c *Converter) Convert(req Request, use24h bool) (Result, error) {
	src, err := c.zones.Load(req.Source)
	if err != nil {
		return Result{}, fmt.Errorf("source zone: %w", err)
	}
	dst, err := c.zones.Load(req.Target)
	if err != nil {
		return Result{}, fmt.Errorf("target zone: %w", err)
	}
	at, err := tzconvert.ParseLocal(req.Input, src)
	if err != nil {
		return Result{}, err
	}

	out := tzconvert.Convert(at, dst)
	diff := tzconvert.HourDifference(src, dst, at)
	return Result{
		Time:         out,
		Target:       req.Target,
		Local:        out.Format(tzconvert.InputLayout),
		Display:      tzconvert.FormatResult(out, use24h),
		Abbreviation: tzconvert.Abbreviation(out),
		DiffHours:    diff,
		Later:        diff > 0,
	}, nil
}

// QuickTime is one cell of the quick target grid.
type QuickTime struct {
	Code     string `json:"code"`
	Timezone string `json:"timezone"`
	Display  string `json:"display"`
}

// Quick shows the request's instant in each quick target zone. When the
// request cannot be read, now is shown instead.
func (c *Converter) Quick(req Request, use24h bool, now time.Time) []QuickTime {
	at := now
	if src, err := c.zones.Load(req.Source); err == nil {
		if t, err := tzconvert.ParseLocal(req.Input, src); err == nil {
			at = t
		}
	}

	targets := catalog.QuickTargets()
	out := make([]QuickTime, 0, len(targets))
	for _, q := range targets {
		loc, err := c.zones.Load(q.Timezone)
		if err != nil {
			continue
		}
		out = append(out, QuickTime{
			Code:     q.Code,
			Timezone: q.Timezone,
			Display:  tzconvert.FormatShort(at.In(loc), use24h),
		})
	}
	return out
}
