// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/BaSui01/npcflow/engine"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// 对话指标
	conversationsStarted prometheus.Counter
	conversationsEnded   prometheus.Counter
	nodesEntered         prometheus.Counter
	choicesSelected      prometheus.Counter

	// 增强指标
	generationsTotal   *prometheus.CounterVec
	generationDuration prometheus.Histogram

	logger *zap.Logger
}

// NewCollector 创建指标收集器。reg 为 nil 时使用默认注册表。
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.conversationsStarted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conversations_started_total",
		Help:      "Total number of conversations started",
	})
	c.conversationsEnded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conversations_ended_total",
		Help:      "Total number of conversations ended",
	})
	c.nodesEntered = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "nodes_entered_total",
		Help:      "Total number of dialogue nodes entered",
	})
	c.choicesSelected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "choices_selected_total",
		Help:      "Total number of player choices selected",
	})

	c.generationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_total",
		Help:      "Total number of augmentation attempts by outcome",
	}, []string{"outcome"})
	c.generationDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "Augmentation request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	return c
}

// Observe 订阅事件总线并统计生命周期事件。返回订阅 ID。
func (c *Collector) Observe(bus *engine.Bus) string {
	return bus.Subscribe(engine.EventAll, func(ev engine.Event) {
		switch ev.Type() {
		case engine.EventConversationStarted:
			c.conversationsStarted.Inc()
		case engine.EventConversationEnded:
			c.conversationsEnded.Inc()
		case engine.EventNodeEntered:
			c.nodesEntered.Inc()
		case engine.EventChoiceSelected:
			c.choicesSelected.Inc()
		}
	})
}

// ObserveGeneration 实现 augment.Observer。
func (c *Collector) ObserveGeneration(duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.generationsTotal.WithLabelValues(outcome).Inc()
	c.generationDuration.Observe(duration.Seconds())
}
