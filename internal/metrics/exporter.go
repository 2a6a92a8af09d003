package metrics

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/IRT-SystemX/bcm-notifier/notifier"
	utils "github.com/IRT-SystemX/bcm-notifier/utils"
)

type Measure struct {
	name        string
	help        string
	valueType   prometheus.ValueType
	value       float64
	labelsName  []string
	labelsValue []string
}

func NewMeasure(name string, desc string, valueType prometheus.ValueType, value float64, labels map[string]string) *Measure {
	measure := &Measure{name: name, help: desc, valueType: valueType, value: value}
	if labels != nil {
		measure.labelsName = make([]string, 0, len(labels))
		for key := range labels {
			measure.labelsName = append(measure.labelsName, key)
		}
		sort.Strings(measure.labelsName)
		measure.labelsValue = make([]string, len(labels))
		for i, key := range measure.labelsName {
			measure.labelsValue[i] = labels[key]
		}
	}
	return measure
}

func (measure *Measure) desc() *prometheus.Desc {
	return prometheus.NewDesc(measure.name, measure.help, measure.labelsName, nil)
}

func (measure *Measure) metric() prometheus.Metric {
	return prometheus.MustNewConstMetric(measure.desc(), measure.valueType, measure.value, measure.labelsValue...)
}

// Exporter turns notifier events into prometheus measures.
type Exporter struct {
	mux       sync.Mutex
	mode      string
	startTime time.Time
	measures  map[string]*Measure
}

func NewExporter(mode string) *Exporter {
	exporter := &Exporter{
		mode:      mode,
		startTime: time.Now(),
		measures:  make(map[string]*Measure),
	}
	for _, name := range []string{"notifier_ticks_total", "notifier_emissions_total", "notifier_fetch_errors_total", "notifier_delivery_errors_total", "notifier_discarded_total"} {
		exporter.set(name, helps[name], prometheus.CounterValue, 0)
	}
	exporter.set("notifier_last_value", helps["notifier_last_value"], prometheus.GaugeValue, 0)
	return exporter
}

var helps = map[string]string{
	"notifier_ticks_total":           "ticks that passed the preconditions",
	"notifier_emissions_total":       "notifications delivered",
	"notifier_fetch_errors_total":    "failed value fetches",
	"notifier_delivery_errors_total": "failed notification deliveries",
	"notifier_discarded_total":       "ticks discarded after cancellation or recipient change",
	"notifier_last_value":            "last value notified",
}

func (exporter *Exporter) Describe(ch chan<- *prometheus.Desc) {
	exporter.mux.Lock()
	defer exporter.mux.Unlock()
	exporter.updateInfos()
	for _, val := range exporter.measures {
		ch <- val.desc()
	}
}

func (exporter *Exporter) Collect(ch chan<- prometheus.Metric) {
	exporter.mux.Lock()
	defer exporter.mux.Unlock()
	exporter.updateInfos()
	for _, val := range exporter.measures {
		ch <- val.metric()
	}
}

func (exporter *Exporter) Observe(event notifier.Event) {
	exporter.mux.Lock()
	defer exporter.mux.Unlock()
	switch event.Type {
	case notifier.EventFetchFailed:
		exporter.incr("notifier_ticks_total")
		exporter.incr("notifier_fetch_errors_total")
	case notifier.EventUnchanged:
		exporter.incr("notifier_ticks_total")
	case notifier.EventEmitted:
		exporter.incr("notifier_ticks_total")
		exporter.incr("notifier_emissions_total")
		if value, err := strconv.ParseFloat(event.Value.String(), 64); err == nil {
			exporter.set("notifier_last_value", helps["notifier_last_value"], prometheus.GaugeValue, value)
		}
	case notifier.EventDeliveryFailed:
		exporter.incr("notifier_ticks_total")
		exporter.incr("notifier_delivery_errors_total")
	case notifier.EventDiscarded:
		exporter.incr("notifier_ticks_total")
		exporter.incr("notifier_discarded_total")
	}
}

func (exporter *Exporter) incr(name string) {
	exporter.measures[name].value++
}

func (exporter *Exporter) set(name string, desc string, valueType prometheus.ValueType, value float64) {
	exporter.measures[name] = NewMeasure(name, desc, valueType, value, nil)
}

func (exporter *Exporter) updateInfos() {
	labels := map[string]string{
		"mode":   exporter.mode,
		"uptime": utils.IntToString(int64(time.Since(exporter.startTime).Seconds())),
	}
	exporter.measures["notifier_info"] = NewMeasure("notifier_info", "infos", prometheus.GaugeValue, 1, labels)
}
