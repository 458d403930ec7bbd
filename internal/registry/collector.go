package registry

import "github.com/prometheus/client_golang/prometheus"

// Collector exports every registered value as a Prometheus gauge. Values are
// read at scrape time, so no update loop is needed.
type Collector struct {
	reg   *Registry
	param *prometheus.Desc
	log   *prometheus.Desc
}

// NewCollector creates a Collector over reg using namespace as the metric prefix.
func NewCollector(reg *Registry, namespace string) *Collector {
	return &Collector{
		reg: reg,
		param: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "param"),
			"Current value of a runtime parameter",
			[]string{"group", "name"}, nil,
		),
		log: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "log"),
			"Current value of a telemetry variable",
			[]string{"group", "name"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.param
	ch <- c.log
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, v := range c.reg.Params() {
		ch <- prometheus.MustNewConstMetric(c.param, prometheus.GaugeValue, float64(v.Value), v.Group, v.Name)
	}
	for _, v := range c.reg.Logs() {
		ch <- prometheus.MustNewConstMetric(c.log, prometheus.GaugeValue, float64(v.Value), v.Group, v.Name)
	}
}
