// AngelaMos | 2026
// system.go

package report

import (
	"context"
	"database/sql"
	"runtime"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/storefront-api/internal/health"
)

// SystemSources supplies the live process state for the system report.
// Any nil source is omitted.
type SystemSources struct {
	Checks     func(ctx context.Context) []health.HealthCheck
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
}

type SystemReport struct {
	Dependencies []health.HealthCheck `json:"dependencies"`
	Database     *DBPoolStats         `json:"database,omitempty"`
	Redis        *RedisPoolStats      `json:"redis,omitempty"`
	Runtime      RuntimeStats         `json:"runtime"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
	MaxIdleClosed      int64  `json:"max_idle_closed"`
	MaxLifetimeClosed  int64  `json:"max_lifetime_closed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	HeapAlloc    uint64 `json:"heap_alloc_bytes"`
	Sys          uint64 `json:"sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}

func (src SystemSources) collect(ctx context.Context) SystemReport {
	report := SystemReport{
		Dependencies: []health.HealthCheck{},
		Runtime:      runtimeStats(),
	}

	if src.Checks != nil {
		report.Dependencies = src.Checks(ctx)
	}

	if src.DBStats != nil {
		s := src.DBStats()
		report.Database = &DBPoolStats{
			MaxOpenConnections: s.MaxOpenConnections,
			OpenConnections:    s.OpenConnections,
			InUse:              s.InUse,
			Idle:               s.Idle,
			WaitCount:          s.WaitCount,
			WaitDuration:       s.WaitDuration.String(),
			MaxIdleClosed:      s.MaxIdleClosed,
			MaxLifetimeClosed:  s.MaxLifetimeClosed,
		}
	}

	if src.RedisStats != nil {
		if s := src.RedisStats(); s != nil {
			report.Redis = &RedisPoolStats{
				Hits:       s.Hits,
				Misses:     s.Misses,
				Timeouts:   s.Timeouts,
				TotalConns: s.TotalConns,
				IdleConns:  s.IdleConns,
				StaleConns: s.StaleConns,
			}
		}
	}

	return report
}

func runtimeStats() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		HeapAlloc:    mem.HeapAlloc,
		Sys:          mem.Sys,
		NumGC:        mem.NumGC,
	}
}
