package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleOffsetChart renders confirmed frame offsets by event index as a
// scatter plot (HTML). This is a debugging-only endpoint to eyeball
// offset drift across the match without the operator UI.
func (s *Server) handleOffsetChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	samples := s.engine.ConfirmedOffsetSamples()
	if len(samples) == 0 {
		s.writeError(w, http.StatusNotFound, "no confirmed events to chart")
		return
	}

	data := make([]opts.ScatterData, 0, len(samples))
	minOff, maxOff := samples[0].Offset, samples[0].Offset
	for _, sm := range samples {
		if sm.Offset < minOff {
			minOff = sm.Offset
		}
		if sm.Offset > maxOff {
			maxOff = sm.Offset
		}
		data = append(data, opts.ScatterData{Value: []interface{}{sm.EventIndex, sm.Offset, sm.PeriodID}})
	}

	// Pad the Y range so a flat series does not sit on the axis.
	pad := (maxOff - minOff) / 10
	if pad == 0 {
		pad = 1
	}

	stats := s.engine.OffsetStats()
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Confirmed Offsets", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Confirmed Frame Offsets",
			Subtitle: fmt.Sprintf("confirmed=%d mean=%.2f stddev=%.2f", stats.Count, stats.Mean, stats.StdDev),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "event index", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: minOff - pad, Max: maxOff + pad, Name: "offset (samples)", NameLocation: "middle", NameGap: 35}),
	)
	scatter.AddSeries("offsets", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
