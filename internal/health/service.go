package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"digital-advisor/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	StatusOK    = "ok"
	StatusIssue = "issue"

	depConnected    = "connected"
	depDisconnected = "disconnected"
	depError        = "error"
	depReachable    = "reachable"
	depUnreachable  = "unreachable"
)

// DBPinger is satisfied by *sql.DB. A nil pinger reports the database as disconnected.
type DBPinger interface {
	Ping() error
}

// ModelPinger checks the model server; the predictor client implements it.
type ModelPinger interface {
	Ping(ctx context.Context) error
}

// Report is the body of GET /health/json.
type Report struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

// MemoryInfo is in MiB.
type MemoryInfo struct {
	Alloc    int `json:"alloc"`
	HeapUsed int `json:"heapUsed"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// Collect gathers dependency and traffic state. The overall status is ok
// when the database and Redis both answer; the model server is reported
// but does not affect it, since the ledger keeps working without it.
func Collect(ctx context.Context, rdb *redis.Client, db DBPinger, model ModelPinger) Report {
	report := Report{Dependencies: make(map[string]DepStatus, 3)}

	dbDep := DepStatus{Status: depDisconnected}
	if db != nil {
		dbDep = timed(func() error { return db.Ping() }, depConnected, depError)
	}
	report.Dependencies["database"] = dbDep

	redisDep := DepStatus{Status: depDisconnected}
	startMs := time.Now().UnixMilli()
	report.Traffic = TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	if rdb != nil {
		redisDep = timed(func() error { return rdb.Ping(ctx).Err() }, depConnected, depError)
		if redisDep.Status == depConnected {
			report.Traffic, startMs = readTraffic(ctx, rdb, startMs)
		}
	}
	report.Dependencies["redis"] = redisDep

	if model != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		report.Dependencies["model_server"] = timed(func() error { return model.Ping(pingCtx) }, depReachable, depUnreachable)
		cancel()
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startMs) / 1000
	if uptime < 0 {
		uptime = 0
	}
	report.Runtime = RuntimeInfo{
		UptimeSeconds: uptime,
		Memory:        MemoryInfo{Alloc: int(m.Alloc / 1024 / 1024), HeapUsed: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	report.Status = StatusIssue
	if dbDep.Status == depConnected && redisDep.Status == depConnected {
		report.Status = StatusOK
	}
	return report
}

func timed(ping func() error, okStatus, failStatus string) DepStatus {
	start := time.Now()
	if err := ping(); err != nil {
		return DepStatus{Status: failStatus}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: okStatus, PingMs: &ms}
}

// readTraffic returns the counters written by the health marker middleware
// and the recorded process start, seeding it on first read.
func readTraffic(ctx context.Context, rdb *redis.Client, startMs int64) (TrafficInfo, int64) {
	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}

	vals, _ := rdb.MGet(ctx,
		middleware.KeyReqTotal,
		middleware.KeyReqErrors,
		middleware.KeyResTime,
		middleware.KeyResCount,
		middleware.KeyStartTime,
		middleware.KeyLastReq,
	).Result()
	str := func(i int) string {
		if i < len(vals) {
			if s, ok := vals[i].(string); ok {
				return s
			}
		}
		return ""
	}

	if s := str(4); s != "" {
		if t, err := strconv.ParseInt(s, 10, 64); err == nil {
			startMs = t
		}
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, startMs, 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(str(0))
	stats.FailedCount, _ = strconv.Atoi(str(1))
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(str(2), 64)
	count, _ := strconv.Atoi(str(3))
	if count > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(count), 'f', 2, 64)
	}
	if s := str(5); s != "" {
		var last map[string]interface{}
		if json.Unmarshal([]byte(s), &last) == nil {
			stats.LastRequest = last
		}
	}
	return stats, startMs
}
