/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package metrics exports the same counters cache.Stats reports (used
// size, hit/miss, connections, dram used) on an optional admin /metrics
// endpoint, via prometheus/client_golang directly plus promhttp.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	"github.com/papercache/papercache/internal/cache"
)

// Collector registers and serves PaperCache's gauges/counters.
type Collector struct {
	reg *prometheus.Registry

	usedSize    prometheus.Gauge
	maxSize     prometheus.Gauge
	connections prometheus.Gauge
	gets        prometheus.Counter
	sets        prometheus.Counter
	dels        prometheus.Counter
	missRatio   prometheus.Gauge
	dramUsed    prometheus.Gauge
}

// New builds a Collector with all metrics registered under the
// "papercache" namespace.
func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		usedSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "papercache", Name: "used_size_bytes", Help: "Current cache used size in bytes.",
		}),
		maxSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "papercache", Name: "max_size_bytes", Help: "Current cache byte budget.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "papercache", Name: "connections", Help: "Currently connected clients.",
		}),
		gets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "papercache", Name: "gets_total", Help: "Total Get commands executed.",
		}),
		sets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "papercache", Name: "sets_total", Help: "Total Set commands executed.",
		}),
		dels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "papercache", Name: "dels_total", Help: "Total Del commands executed.",
		}),
		missRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "papercache", Name: "miss_ratio", Help: "Current Get miss ratio.",
		}),
		dramUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "papercache", Name: "dram_used_bytes", Help: "Bytes currently allocated from the fast/DRAM tier.",
		}),
	}

	c.reg.MustRegister(c.usedSize, c.maxSize, c.connections, c.gets, c.sets, c.dels, c.missRatio, c.dramUsed)
	return c
}

// Observe snapshots a cache.Stats into the gauge set. Counters track
// their own deltas since the last observed totals are monotonic.
func (c *Collector) Observe(s cache.Stats) {
	c.usedSize.Set(float64(s.UsedSize))
	c.maxSize.Set(float64(s.MaxSize))
	c.missRatio.Set(s.MissRatio)
	c.gets.Add(float64(s.TotalGets) - c.getsObserved())
	c.sets.Add(float64(s.TotalSets) - c.setsObserved())
	c.dels.Add(float64(s.TotalDels) - c.delsObserved())
}

// getsObserved/setsObserved/delsObserved let Observe add only the delta
// since counters, unlike gauges, cannot be set directly in the
// client_golang API.
func (c *Collector) getsObserved() float64 { return readCounter(c.gets) }
func (c *Collector) setsObserved() float64 { return readCounter(c.sets) }
func (c *Collector) delsObserved() float64 { return readCounter(c.dels) }

func readCounter(ctr prometheus.Counter) float64 {
	var m dto.Metric
	_ = ctr.Write(&m)
	return m.GetCounter().GetValue()
}

// SetConnections updates the live connection gauge.
func (c *Collector) SetConnections(n int64) {
	c.connections.Set(float64(n))
}

// SetDRAMUsed updates the fast-tier allocator usage gauge.
func (c *Collector) SetDRAMUsed(n int64) {
	c.dramUsed.Set(float64(n))
}

// Handler returns the net/http handler serving the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve blocks serving /metrics on addr until ctx is canceled.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
