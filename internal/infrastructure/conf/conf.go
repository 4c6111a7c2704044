// Package conf 定义服务的启动配置结构，由 Kratos config 从 YAML 扫描填充。
// 所有时间类配置使用整数秒，避免依赖 protobuf Duration。
package conf

import (
	"fmt"
	"time"
)

// Bootstrap 聚合所有配置分区。
type Bootstrap struct {
	Server        *Server        `json:"server"`
	Data          *Data          `json:"data"`
	Provider      *Provider      `json:"provider"`
	PubSub        *PubSub        `json:"pubsub"`
	Outbox        *Outbox        `json:"outbox"`
	Observability *Observability `json:"observability"`
}

// Server 描述入站服务器配置。
type Server struct {
	HTTP    *HTTPServer     `json:"http"`
	Handler *HandlerTimeout `json:"handler"`
}

// HTTPServer 描述 HTTP 监听配置。
type HTTPServer struct {
	Network        string `json:"network"`
	Addr           string `json:"addr"`
	TimeoutSeconds int64  `json:"timeout_seconds"`
}

// Timeout 返回服务器级请求超时。
func (s *HTTPServer) Timeout() time.Duration {
	if s == nil || s.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// HandlerTimeout 描述按 Handler 类型区分的超时策略。
type HandlerTimeout struct {
	DefaultSeconds int64 `json:"default_seconds"`
	CommandSeconds int64 `json:"command_seconds"`
	QuerySeconds   int64 `json:"query_seconds"`
}

// Data 描述存储层配置。
type Data struct {
	Postgres *Postgres `json:"postgres"`
}

// Postgres 描述 PostgreSQL 连接池配置。
type Postgres struct {
	DSN                      string       `json:"dsn"`
	Schema                   string       `json:"schema"`
	MaxOpenConns             int32        `json:"max_open_conns"`
	MinOpenConns             int32        `json:"min_open_conns"`
	MaxConnLifetimeSeconds   int64        `json:"max_conn_lifetime_seconds"`
	MaxConnIdleTimeSeconds   int64        `json:"max_conn_idle_time_seconds"`
	HealthCheckPeriodSeconds int64        `json:"health_check_period_seconds"`
	EnablePreparedStatements bool         `json:"enable_prepared_statements"`
	Transaction              *Transaction `json:"transaction"`
}

// Transaction 描述事务管理器配置。
type Transaction struct {
	DefaultIsolation      string `json:"default_isolation"`
	MaxRetries            int32  `json:"max_retries"`
	DefaultTimeoutSeconds int64  `json:"default_timeout_seconds"`
	LockTimeoutSeconds    int64  `json:"lock_timeout_seconds"`
}

// Provider 描述视频托管服务商（Bunny Stream 风格 API）配置。
type Provider struct {
	LibraryID        int64  `json:"library_id"`
	APIKey           string `json:"api_key"`
	APIBaseURL       string `json:"api_base_url"`
	CDNHostname      string `json:"cdn_hostname"`
	UploadEndpoint   string `json:"upload_endpoint"`
	UploadTTLSeconds int64  `json:"upload_ttl_seconds"`
	TimeoutSeconds   int64  `json:"timeout_seconds"`
}

// UploadTTL 返回上传签名的有效期。
func (p *Provider) UploadTTL() time.Duration {
	if p == nil || p.UploadTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(p.UploadTTLSeconds) * time.Second
}

// Timeout 返回服务商 API 调用超时。
func (p *Provider) Timeout() time.Duration {
	if p == nil || p.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// PubSub 描述事件发布配置。
type PubSub struct {
	ProjectID        string `json:"project_id"`
	TopicID          string `json:"topic_id"`
	SubscriptionID   string `json:"subscription_id"`
	EmulatorEndpoint string `json:"emulator_endpoint"`
}

// Outbox 描述 Outbox 发布任务配置。
type Outbox struct {
	TickIntervalSeconds   int64 `json:"tick_interval_seconds"`
	BatchSize             int32 `json:"batch_size"`
	MaxAttempts           int32 `json:"max_attempts"`
	InitialBackoffSeconds int64 `json:"initial_backoff_seconds"`
	MaxBackoffSeconds     int64 `json:"max_backoff_seconds"`
	PublishTimeoutSeconds int64 `json:"publish_timeout_seconds"`
	Workers               int32 `json:"workers"`
}

// Observability 描述追踪与指标配置。
type Observability struct {
	Tracing *Tracing `json:"tracing"`
	Metrics *Metrics `json:"metrics"`
}

// Tracing 描述 OTLP 追踪导出配置。
type Tracing struct {
	Enabled       bool    `json:"enabled"`
	Exporter      string  `json:"exporter"`
	Endpoint      string  `json:"endpoint"`
	Insecure      bool    `json:"insecure"`
	SamplingRatio float64 `json:"sampling_ratio"`
}

// Metrics 描述指标导出配置。
type Metrics struct {
	Enabled         bool   `json:"enabled"`
	Exporter        string `json:"exporter"`
	Endpoint        string `json:"endpoint"`
	Insecure        bool   `json:"insecure"`
	IntervalSeconds int64  `json:"interval_seconds"`
}

// Validate 检查配置的最小完整性。配置为纯结构体扫描，
// 无法依赖 protovalidate，必填约束在此手工维护。
func (bc *Bootstrap) Validate() error {
	if bc == nil {
		return fmt.Errorf("bootstrap configuration is empty")
	}
	if bc.Server == nil || bc.Server.HTTP == nil || bc.Server.HTTP.Addr == "" {
		return fmt.Errorf("server.http.addr is required")
	}
	if bc.Data == nil || bc.Data.Postgres == nil || bc.Data.Postgres.DSN == "" {
		return fmt.Errorf("data.postgres.dsn is required (set DATABASE_URL)")
	}
	if p := bc.Provider; p != nil && p.APIKey != "" && p.LibraryID <= 0 {
		return fmt.Errorf("provider.library_id is required when provider.api_key is set")
	}
	if o := bc.Outbox; o != nil {
		if o.BatchSize < 0 {
			return fmt.Errorf("outbox.batch_size must not be negative")
		}
		if o.Workers < 0 {
			return fmt.Errorf("outbox.workers must not be negative")
		}
	}
	return nil
}
