// Package validate checks every data file the pages depend on, without
// rendering anything. Each resource is checked on its own; a failure is
// recorded against its label and never stops the rest of the batch.
package validate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/egypt-online-web/internal/page"
	"finitefield.org/egypt-online-web/internal/records"
	"finitefield.org/egypt-online-web/internal/resource"
	"finitefield.org/egypt-online-web/internal/schema"
)

// Milestone years outside this range are reported as warnings.
const (
	MinYear = 1980
	MaxYear = 2100
)

// ErrMissingKeys is wrapped by the ISP check when offers lack fields under
// every synonym.
var ErrMissingKeys = errors.New("Missing required keys")

// Result is the outcome of checking one resource.
type Result struct {
	Label    string
	File     string
	OK       bool
	Err      error
	Warnings []string
	Duration time.Duration
}

// Report lists results in a fixed order: home, timeline, growth, isps,
// penetration.
type Report struct {
	Results []Result
}

// OK reports whether every resource passed.
func (r Report) OK() bool {
	for _, res := range r.Results {
		if !res.OK {
			return false
		}
	}
	return true
}

// Failed returns the failing results in report order.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK {
			out = append(out, res)
		}
	}
	return out
}

// Print writes a plain-text summary, one line per result and warning.
func (r Report) Print(w io.Writer) error {
	for _, res := range r.Results {
		var err error
		if res.OK {
			_, err = fmt.Fprintf(w, "ok    %s: %s\n", res.Label, res.File)
		} else {
			_, err = fmt.Fprintf(w, "FAIL  %s: %v\n", res.Label, res.Err)
		}
		if err != nil {
			return err
		}
		for _, warn := range res.Warnings {
			if _, err := fmt.Fprintf(w, "warn  %s: %s\n", res.Label, warn); err != nil {
				return err
			}
		}
	}
	return nil
}

type check struct {
	label string
	path  string
	run   func(ctx context.Context, doc any, res *Result) error
}

// Validator runs the resource checks.
type Validator struct {
	loader *resource.Loader
	logger *zap.Logger
	checks []check
}

// New builds a validator reading through loader.
func New(loader *resource.Loader, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Validator{loader: loader, logger: logger}
	v.checks = []check{
		{label: "home", path: "data/home.json", run: checkHome},
		{label: "timeline", path: "data/timeline.json", run: checkTimeline},
		{label: "growth", path: "data/growth.json", run: checkGrowth},
		{label: "isps", path: "data/isps.json", run: checkISPs},
		{label: "penetration", path: "data/penetration.json", run: checkPenetration},
	}
	return v
}

// Run checks every resource concurrently and returns the report in fixed order.
func (v *Validator) Run(ctx context.Context) Report {
	results := make([]Result, len(v.checks))
	var g errgroup.Group
	for i, c := range v.checks {
		g.Go(func() error {
			results[i] = v.runCheck(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		log := v.logger.With(zap.String("label", res.Label), zap.String("file", res.File))
		for _, w := range res.Warnings {
			log.Warn("validation warning", zap.String("warning", w))
		}
		if res.OK {
			log.Info("validation ok", zap.Duration("duration", res.Duration))
			continue
		}
		log.Error("validation failed", zap.Error(res.Err))
	}
	return Report{Results: results}
}

func (v *Validator) runCheck(ctx context.Context, c check) (res Result) {
	start := time.Now()
	res = Result{Label: c.label, File: fileName(c.path)}
	defer func() {
		if r := recover(); r != nil {
			res.OK = false
			res.Err = fmt.Errorf("check panicked: %v", r)
		}
		res.Duration = time.Since(start)
	}()
	doc, err := v.loader.Load(ctx, c.path)
	if err == nil {
		err = c.run(ctx, doc, &res)
	}
	res.OK = err == nil
	res.Err = err
	return res
}

func fileName(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

func checkHome(_ context.Context, doc any, res *Result) error {
	snaps, err := schema.Snapshot.Ensure(records.Member(doc, "snapshots"), "home.snapshots")
	if err != nil {
		return err
	}
	res.strict(schema.Snapshot, snaps, "home.snapshots")
	facts := records.Member(doc, "facts")
	if _, ok := facts.([]any); !ok {
		res.warn("facts[] not present, skipping facts validation")
		return nil
	}
	recs, err := schema.Fact.Ensure(facts, "home.facts")
	if err != nil {
		return err
	}
	res.strict(schema.Fact, recs, "home.facts")
	return nil
}

func checkTimeline(_ context.Context, doc any, res *Result) error {
	recs, err := schema.Milestone.Ensure(doc, "timeline")
	if err != nil {
		return err
	}
	res.strict(schema.Milestone, recs, "timeline")
	var bad []string
	for _, rec := range recs {
		y, ok := numeric(rec["year"])
		if !ok || y < MinYear || y > MaxYear {
			bad = append(bad, fmt.Sprint(rec["year"]))
		}
	}
	if len(bad) > 0 {
		res.warn("Unexpected year values: " + strings.Join(bad, ", "))
	}
	return nil
}

func checkGrowth(_ context.Context, doc any, res *Result) error {
	if _, ok := doc.(map[string]any); !ok {
		res.warn("growth.json is not an object, nothing to check")
		return nil
	}
	lists := []struct {
		key string
		sc  schema.Schema
	}{
		{"stats", schema.Stat},
		{"types", schema.ShareType},
		{"speeds", schema.Speed},
		{"facts", schema.Fact},
	}
	for _, l := range lists {
		v := records.Member(doc, l.key)
		if _, ok := v.([]any); !ok {
			continue
		}
		source := "growth." + l.key
		recs, err := l.sc.Ensure(v, source)
		if err != nil {
			return err
		}
		res.strict(l.sc, recs, source)
	}
	return nil
}

func checkISPs(_ context.Context, doc any, res *Result) error {
	rows, err := schema.EnsureShape(doc, nil, "isps")
	if err != nil {
		return err
	}
	var reports []string
	for i, row := range rows {
		var missing []string
		norm := schema.ISPSynonyms.Normalize(row)
		for _, f := range schema.ISPSynonyms {
			if !blank(norm[f.Canonical]) {
				continue
			}
			names := strings.Join(f.Synonyms, "/")
			if f.Canonical == "logo" {
				res.warn(fmt.Sprintf("isps[%d]: no %s", i, names))
				continue
			}
			missing = append(missing, names)
		}
		if len(missing) > 0 {
			reports = append(reports, fmt.Sprintf(" - isps[%d]: missing %s", i, strings.Join(missing, ", ")))
		}
	}
	if len(reports) > 0 {
		return fmt.Errorf("%w:\n%s", ErrMissingKeys, strings.Join(reports, "\n"))
	}
	res.strict(schema.ISP, schema.ISPSynonyms.NormalizeAll(rows), "isps (normalized)")
	return nil
}

func checkPenetration(_ context.Context, doc any, res *Result) error {
	series, err := records.Series(doc)
	if err != nil {
		return err
	}
	recs, err := schema.Point.Ensure(series, "penetration.series")
	if err != nil {
		return err
	}
	res.strict(schema.Point, recs, "penetration.series")
	return nil
}

func (r *Result) warn(msg string) { r.Warnings = append(r.Warnings, msg) }

func (r *Result) strict(sc schema.Schema, recs []map[string]any, source string) {
	warnings, err := sc.Strict(recs, source)
	if err != nil {
		r.warn("strict check unavailable: " + err.Error())
		return
	}
	r.Warnings = append(r.Warnings, warnings...)
}

// blank mirrors a falsy check: absent, empty, zero or false.
func blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case interface{ Float64() (float64, error) }:
		f, err := x.Float64()
		return err == nil && f == 0
	}
	return false
}

func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case interface{ Float64() (float64, error) }:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

// Requested reports whether the diagnostic pass was asked for in the query.
// A bare "?validate" enables it; "0", "false", "no" and "off" do not.
func Requested(q url.Values) bool {
	if _, ok := q["validate"]; !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(q.Get("validate"))) {
	case "0", "false", "no", "off":
		return false
	}
	return true
}

// Annotate prepends one diagnostic card per failed resource into container.
func Annotate(ctx context.Context, doc *page.Document, container string, card page.CardFunc, report Report) int {
	n := 0
	for _, res := range report.Failed() {
		frag := card(ctx, "Validation error — "+res.Label, res.Err.Error())
		if doc.Prepend(container, frag) {
			n++
		}
	}
	return n
}
