package service

import (
	"time"

	"modportal/logger"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/atomic"
)

// Status is the admin dashboard snapshot.
type Status struct {
	Uptime         uint64  `json:"uptime"`
	CpuPercent     float64 `json:"cpuPercent"`
	MemUsed        uint64  `json:"memUsed"`
	MemTotal       uint64  `json:"memTotal"`
	ModeratorCount int64   `json:"moderatorCount"`
	RequestsServed int64   `json:"requestsServed"`
}

// StatusService collects process and store statistics for the admin
// dashboard.
type StatusService struct {
	users     *UserService
	startTime time.Time
	requests  *atomic.Int64
}

func NewStatusService(users *UserService) *StatusService {
	return &StatusService{
		users:     users,
		startTime: time.Now(),
		requests:  atomic.NewInt64(0),
	}
}

// CountRequest increments the served-request counter. Safe for
// concurrent use from the request path.
func (s *StatusService) CountRequest() {
	s.requests.Inc()
}

func (s *StatusService) GetStatus() *Status {
	status := &Status{
		Uptime:         uint64(time.Since(s.startTime).Seconds()),
		RequestsServed: s.requests.Load(),
	}

	if percents, err := cpu.Percent(0, false); err != nil {
		logger.Warning("get cpu percent failed:", err)
	} else if len(percents) > 0 {
		status.CpuPercent = percents[0]
	}

	if memInfo, err := mem.VirtualMemory(); err != nil {
		logger.Warning("get virtual memory failed:", err)
	} else {
		status.MemUsed = memInfo.Used
		status.MemTotal = memInfo.Total
	}

	if count, err := s.users.CountModerators(); err != nil {
		logger.Warning("count moderators failed:", err)
	} else {
		status.ModeratorCount = count
	}

	return status
}
