package metrics

import (
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
	gocl "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// MetricFamiliesChecker searches the metric families gathered from a registry.
type MetricFamiliesChecker struct {
	families []*gocl.MetricFamily
	t        require.TestingT
}

// NewMetricChecker gathers all metrics of reg, for inspection in a test.
func NewMetricChecker(t require.TestingT, reg *prometheus.Registry) *MetricFamiliesChecker {
	families, err := reg.Gather()
	require.NoError(t, err, "must gather metrics")
	return &MetricFamiliesChecker{families: families, t: t}
}

// FindByName returns the metric family with the given name, failing the test if absent.
func (m *MetricFamiliesChecker) FindByName(name string) *MetricFamilyChecker {
	var found *gocl.MetricFamily
	for _, f := range m.families {
		if f.GetName() != name {
			continue
		}
		require.Nil(m.t, found, "duplicate metric family %q", name)
		found = f
	}
	require.NotNil(m.t, found, "cannot find metric family %q", name)
	return &MetricFamilyChecker{fam: found, t: m.t}
}

// Dump returns the gathered metrics as indented JSON, for debugging.
func (m *MetricFamiliesChecker) Dump() string {
	out, _ := json.MarshalIndent(m.families, "  ", "  ")
	return string(out)
}

type MetricFamilyChecker struct {
	fam *gocl.MetricFamily
	t   require.TestingT
}

// FindByLabels returns the single metric carrying all given labels, failing
// the test if none or several match.
func (f *MetricFamilyChecker) FindByLabels(labels map[string]string) *gocl.Metric {
	var found *gocl.Metric
	for _, m := range f.fam.Metric {
		if !matchesLabels(m, labels) {
			continue
		}
		require.Nil(f.t, found, "more than one metric in %q matches labels %v", f.fam.GetName(), labels)
		found = m
	}
	require.NotNil(f.t, found, "no metric in %q matches labels %v", f.fam.GetName(), labels)
	return found
}

func matchesLabels(m *gocl.Metric, labels map[string]string) bool {
	for k, v := range labels {
		matched := false
		for _, lab := range m.Label {
			if lab.GetName() == k && lab.GetValue() == v {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
