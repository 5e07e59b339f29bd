package fancy

import (
	"fmt"
	"strings"

	dto "github.com/prometheus/client_model/go"
)

// MetricsTree renders gathered counters and gauges, one node per series.
func MetricsTree(families []*dto.MetricFamily) *ComponentTree {
	t := NewComponentTree(RootStyle.Render("Metrics"))
	for _, mf := range families {
		branch := BranchNode(mf.GetName(), InfoStyle.Render(mf.GetHelp()))
		for _, m := range mf.GetMetric() {
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			default:
				continue
			}
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			name := "{" + strings.Join(labels, ",") + "}"
			if len(labels) == 0 {
				name = "value"
			}
			branch.Child(fmt.Sprintf("%s %s", name, CountText(fmt.Sprintf("%g", value))))
		}
		t.AddChild(branch)
	}
	return t
}
