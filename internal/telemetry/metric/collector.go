package metric

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector reports gauges whose values are read at scrape time, such as
// queue lengths owned by other goroutines. The value functions must be safe
// for concurrent use.
type Collector struct {
	mu     sync.RWMutex
	gauges []sampledGauge
}

type sampledGauge struct {
	desc  *prometheus.Desc
	value func() float64
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// AddGauge registers a sampled gauge. Call before registering the collector.
func (c *Collector) AddGauge(subsystem, name, help string, value func() float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges = append(c.gauges, sampledGauge{
		desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, nil),
		value: value,
	})
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, g := range c.gauges {
		ch <- g.desc
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, g := range c.gauges {
		ch <- prometheus.MustNewConstMetric(g.desc, prometheus.GaugeValue, g.value())
	}
}
