package web

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/xaenox/moodlog/internal/analytics"
	"github.com/xaenox/moodlog/internal/models"
)

// Components are authored as plain Go templ.Components rather than .templ
// files so no codegen step is needed to build the repo.

// DashboardData carries everything one render of the dashboard needs.
type DashboardData struct {
	Range    analytics.TimeRange
	Summary  analytics.Summary
	Labels   []analytics.LabelCount
	Bins     []analytics.HistogramBin
	Points   []analytics.ScatterPoint
	Logs     []models.QueryLog
	Advisory string
}

const pageStyle = `
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6f8; color: #1c2430; }
header { background: #1c2430; color: #fff; padding: 14px 24px; display: flex; justify-content: space-between; align-items: center; }
main { padding: 24px; max-width: 1100px; margin: 0 auto; }
.cards { display: grid; grid-template-columns: repeat(4, 1fr); gap: 16px; margin-bottom: 24px; }
.card { background: #fff; border-radius: 8px; padding: 16px; box-shadow: 0 1px 2px rgba(0,0,0,.08); }
.card .value { font-size: 28px; font-weight: 600; }
.card .name { color: #69727f; font-size: 13px; text-transform: uppercase; }
.panel { background: #fff; border-radius: 8px; padding: 16px; box-shadow: 0 1px 2px rgba(0,0,0,.08); margin-bottom: 24px; }
.panel h2 { font-size: 15px; margin: 0 0 12px; }
.bar-row { display: flex; align-items: center; gap: 8px; margin: 4px 0; font-size: 13px; }
.bar-row .bar { height: 14px; border-radius: 3px; }
.hist { display: flex; align-items: flex-end; gap: 2px; height: 120px; }
.hist .bin { flex: 1; display: flex; flex-direction: column-reverse; }
.hist .seg-pos { background: #00cc96; }
.hist .seg-neg { background: #ef553b; }
.hist .seg-other { background: #8899aa; }
.positive { color: #00995f; }
.negative { color: #cc3a1e; }
table { width: 100%; border-collapse: collapse; font-size: 13px; }
th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #e5e8ec; }
.advisory { background: #fff4e0; border: 1px solid #e8c98a; border-radius: 6px; padding: 10px 14px; margin-bottom: 16px; }
.controls { display: flex; gap: 12px; align-items: center; margin-bottom: 20px; }
a.button { background: #1c2430; color: #fff; padding: 6px 12px; border-radius: 6px; text-decoration: none; font-size: 13px; }
`

// Page is the full dashboard document.
func Page(data DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, "<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">")
		fmt.Fprint(w, "<title>Sentiment Analysis Dashboard</title>")
		fmt.Fprintf(w, "<style>%s</style>", pageStyle)
		fmt.Fprint(w, "<script src=\"https://unpkg.com/htmx.org@1.9.12\"></script>")
		fmt.Fprint(w, "</head><body>")
		fmt.Fprint(w, "<header><strong>Real-time Sentiment Analysis Dashboard</strong><span>moodlog</span></header>")
		fmt.Fprint(w, "<main>")

		fmt.Fprint(w, "<div class=\"controls\">")
		fmt.Fprintf(w, "<form hx-get=\"/dashboard/refresh\" hx-target=\"#dashboard\" hx-trigger=\"change\">%s</form>", rangeSelect(data.Range))
		fmt.Fprintf(w, "<a class=\"button\" href=\"/dashboard/export.csv?range=%s\">Download Data as CSV</a>", data.Range)
		fmt.Fprint(w, "</div>")

		fmt.Fprint(w, "<div id=\"dashboard\">")
		if err := Content(data).Render(ctx, w); err != nil {
			return err
		}
		fmt.Fprint(w, "</div>")

		// Refresh the dashboard when the server announces a new row.
		fmt.Fprintf(w, `<script>
const es = new EventSource('/dashboard/events');
es.addEventListener('query.logged', function () {
  htmx.ajax('GET', '/dashboard/refresh?range=%s', '#dashboard');
});
</script>`, data.Range)

		fmt.Fprint(w, "</main></body></html>")
		return nil
	})
}

func rangeSelect(selected analytics.TimeRange) string {
	options := []analytics.TimeRange{
		analytics.RangeAllTime,
		analytics.RangeLastHour,
		analytics.RangeLast24Hours,
		analytics.RangeLast7Days,
	}
	out := "<select name=\"range\">"
	for _, r := range options {
		sel := ""
		if r == selected {
			sel = " selected"
		}
		out += fmt.Sprintf("<option value=\"%s\"%s>%s</option>", r, sel, r.Label())
	}
	return out + "</select>"
}

// Content is the refreshable inner section, rendered whole for HTMX swaps.
func Content(data DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if data.Advisory != "" {
			fmt.Fprintf(w, "<div class=\"advisory\">%s</div>", templ.EscapeString(data.Advisory))
		}

		renderKPIs(w, data.Summary)

		fmt.Fprint(w, "<div class=\"panel\"><h2>Sentiment Distribution</h2>")
		renderLabelBars(w, data.Labels, data.Summary.TotalQueries)
		fmt.Fprint(w, "</div>")

		fmt.Fprint(w, "<div class=\"panel\"><h2>Confidence Score Distribution</h2>")
		renderHistogram(w, data.Bins)
		fmt.Fprint(w, "</div>")

		fmt.Fprint(w, "<div class=\"panel\"><h2>Sentiment Trends Over Time</h2>")
		renderScatter(w, data.Points)
		fmt.Fprint(w, "</div>")

		fmt.Fprint(w, "<div class=\"panel\"><h2>Recent Query Logs</h2>")
		renderLogsTable(w, data.Logs)
		fmt.Fprint(w, "</div>")
		return nil
	})
}

func renderKPIs(w io.Writer, s analytics.Summary) {
	fmt.Fprint(w, "<div class=\"cards\">")
	fmt.Fprintf(w, "<div class=\"card\"><div class=\"name\">Total Queries</div><div class=\"value\">%d</div></div>", s.TotalQueries)
	fmt.Fprintf(w, "<div class=\"card\"><div class=\"name\">Positive</div><div class=\"value positive\">%d</div></div>", s.PositiveCount)
	fmt.Fprintf(w, "<div class=\"card\"><div class=\"name\">Negative</div><div class=\"value negative\">%d</div></div>", s.NegativeCount)
	fmt.Fprintf(w, "<div class=\"card\"><div class=\"name\">Avg Confidence</div><div class=\"value\">%.2f</div></div>", s.AvgScore)
	fmt.Fprint(w, "</div>")
}

func labelColor(label string) string {
	switch label {
	case models.LabelPositive:
		return "#00cc96"
	case models.LabelNegative:
		return "#ef553b"
	default:
		return "#8899aa"
	}
}

func renderLabelBars(w io.Writer, labels []analytics.LabelCount, total int) {
	if total == 0 {
		fmt.Fprint(w, "<p>No data for distribution.</p>")
		return
	}
	for _, lc := range labels {
		pct := float64(lc.Count) / float64(total) * 100
		fmt.Fprintf(w,
			"<div class=\"bar-row\"><span style=\"width:80px\">%s</span><div class=\"bar\" style=\"width:%.1f%%;background:%s\"></div><span>%d</span></div>",
			templ.EscapeString(lc.Label), pct, labelColor(lc.Label), lc.Count)
	}
}

func renderHistogram(w io.Writer, bins []analytics.HistogramBin) {
	max := 0
	for _, b := range bins {
		if t := b.Total(); t > max {
			max = t
		}
	}
	if max == 0 {
		fmt.Fprint(w, "<p>No data for histogram.</p>")
		return
	}

	fmt.Fprint(w, "<div class=\"hist\">")
	for _, b := range bins {
		fmt.Fprintf(w, "<div class=\"bin\" title=\"%.2f–%.2f: %d\">", b.Low, b.High, b.Total())
		segment := func(class string, count int) {
			if count == 0 {
				return
			}
			h := float64(count) / float64(max) * 100
			fmt.Fprintf(w, "<div class=\"%s\" style=\"height:%.1f%%\"></div>", class, h)
		}
		segment("seg-pos", b.Positive)
		segment("seg-neg", b.Negative)
		segment("seg-other", b.Other)
		fmt.Fprint(w, "</div>")
	}
	fmt.Fprint(w, "</div>")
}

func renderScatter(w io.Writer, points []analytics.ScatterPoint) {
	if len(points) == 0 {
		fmt.Fprint(w, "<p>No data for trends.</p>")
		return
	}

	const width, height = 1040, 160
	first := points[0].Timestamp
	last := points[len(points)-1].Timestamp
	span := last.Sub(first)

	fmt.Fprintf(w, "<svg width=\"100%%\" height=\"%d\" viewBox=\"0 0 %d %d\" preserveAspectRatio=\"none\">", height, width, height)
	for _, p := range points {
		x := float64(width) / 2
		if span > 0 {
			x = float64(p.Timestamp.Sub(first)) / float64(span) * float64(width-10)
		}
		y := float64(height-10) * (1 - p.Score)
		fmt.Fprintf(w, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"><title>%s %.2f</title></circle>",
			x+5, y+5, labelColor(p.Label), p.Timestamp.UTC().Format(time.RFC3339), p.Score)
	}
	fmt.Fprint(w, "</svg>")
}

func renderLogsTable(w io.Writer, logs []models.QueryLog) {
	if len(logs) == 0 {
		fmt.Fprint(w, "<p>No data available for the selected time range.</p>")
		return
	}
	fmt.Fprint(w, "<table><thead><tr><th>Timestamp</th><th>Input Text</th><th>Label</th><th>Score</th></tr></thead><tbody>")
	for _, log := range logs {
		fmt.Fprintf(w, "<tr><td>%s</td><td>%s</td><td class=\"%s\">%s</td><td>%.2f</td></tr>",
			log.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			templ.EscapeString(log.InputText),
			cssClass(log.ModelLabel),
			templ.EscapeString(log.ModelLabel),
			log.ModelScore)
	}
	fmt.Fprint(w, "</tbody></table>")
}

func cssClass(label string) string {
	switch label {
	case models.LabelPositive:
		return "positive"
	case models.LabelNegative:
		return "negative"
	default:
		return ""
	}
}
