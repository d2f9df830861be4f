package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HaloMetrics 服务自身的业务指标集合
type HaloMetrics struct {
	// RequestTotal HTTP 请求计数，按路由和状态码区分
	RequestTotal *prometheus.CounterVec
	// RequestDuration HTTP 请求耗时分布
	RequestDuration *prometheus.HistogramVec

	// IngestPagesTotal 抽卡记录抓取页数
	IngestPagesTotal prometheus.Counter
	// IngestRecordsTotal 抽卡记录入库结果计数，result 取 stored/duplicate
	IngestRecordsTotal *prometheus.CounterVec
	// RecomputeTotal 五星间隔重算次数，result 取 ok/busy/error
	RecomputeTotal *prometheus.CounterVec

	// DBQueryDuration 数据库操作耗时分布，按操作名区分
	DBQueryDuration *prometheus.HistogramVec
	// CacheRequestTotal 缓存访问计数，result 取 hit/miss
	CacheRequestTotal *prometheus.CounterVec
}

// New 创建指标集合，namespace 为空时使用 halolab
func New(namespace string) *HaloMetrics {
	if namespace == "" {
		namespace = "halolab"
	}
	return &HaloMetrics{
		RequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		IngestPagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gacha_ingest_pages_total",
			Help:      "Total number of upstream pages fetched",
		}),
		IngestRecordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gacha_ingest_records_total",
			Help:      "Total number of gacha records processed by ingestion",
		}, []string{"result"}),
		RecomputeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fivestar_recompute_total",
			Help:      "Total number of five-star interval recompute runs",
		}, []string{"result"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database operation latency distribution",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		CacheRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Total number of cache lookups",
		}, []string{"name", "result"}),
	}
}

// Register 把全部指标注册到指定的 registry
func (m *HaloMetrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.RequestTotal,
		m.RequestDuration,
		m.IngestPagesTotal,
		m.IngestRecordsTotal,
		m.RecomputeTotal,
		m.DBQueryDuration,
		m.CacheRequestTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
