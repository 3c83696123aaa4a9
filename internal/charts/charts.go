// Package charts renders the two analysis visuals as PNG files: a bar
// chart of top attacking IPs and a bucketed failed-login timeline.
package charts

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/guendazorz/log-detective/internal/event"
)

// TopAttackingIPs renders a bar chart of failed-login counts per source
// address, descending, limited to topN bars. Ties break on the IP string
// so repeated runs render identically. Nothing to plot is not an error;
// the file is simply not written.
func TopAttackingIPs(events []event.Event, topN int, path string) error {
	counts := make(map[string]int)
	for _, evt := range events {
		if evt.Type == event.FailedLogin && evt.IP != "" {
			counts[evt.IP]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	type ipCount struct {
		ip    string
		count int
	}
	ranked := make([]ipCount, 0, len(counts))
	for ip, n := range counts {
		ranked = append(ranked, ipCount{ip, n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].ip < ranked[j].ip
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}

	values := make(plotter.Values, len(ranked))
	labels := make([]string, len(ranked))
	for i, rc := range ranked {
		values[i] = float64(rc.count)
		labels[i] = rc.ip
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Top %d Attacking IPs (Failed Logins)", len(ranked))
	p.X.Label.Text = "IP"
	p.Y.Label.Text = "Failed login count"
	p.X.Tick.Label.Rotation = -0.5
	p.X.Tick.Label.XAlign = -0.8

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("building bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving chart %s: %w", path, err)
	}
	return nil
}

// FailedLoginTimeline renders a line chart of failed-login counts per
// time bucket. Buckets with no failures between the first and last
// observation render as zero. Failures without timestamps are skipped;
// with no plottable data the chart is skipped entirely.
func FailedLoginTimeline(events []event.Event, bucket time.Duration, path string) error {
	if bucket <= 0 {
		bucket = time.Minute
	}

	counts := make(map[time.Time]int)
	var first, last time.Time
	for _, evt := range events {
		if evt.Type != event.FailedLogin || !evt.HasTimestamp() {
			continue
		}
		b := evt.Timestamp.Truncate(bucket)
		counts[b]++
		if first.IsZero() || b.Before(first) {
			first = b
		}
		if b.After(last) {
			last = b
		}
	}
	if len(counts) == 0 {
		return nil
	}

	var points plotter.XYs
	for b := first; !b.After(last); b = b.Add(bucket) {
		points = append(points, plotter.XY{
			X: float64(b.Unix()),
			Y: float64(counts[b]),
		})
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Failed Login Timeline (%s buckets)", bucket)
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Failed logins"
	p.X.Tick.Marker = plot.TimeTicks{Format: "15:04"}

	line, err := plotter.NewLine(points)
	if err != nil {
		return fmt.Errorf("building timeline: %w", err)
	}
	p.Add(line)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving chart %s: %w", path, err)
	}
	return nil
}
