package worker

import (
	"context"

	"github.com/osse101/TillSync_Go/internal/connectivity"
	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/logger"
)

// Syncer runs one drain cycle
type Syncer interface {
	Sync(ctx context.Context) (domain.SyncSummary, error)
}

// Prober refreshes the online state from the remote
type Prober interface {
	Probe(ctx context.Context, p connectivity.Pinger) bool
}

// SyncJob drains the pending queue
type SyncJob struct {
	engine Syncer
}

// NewSyncJob creates the periodic and on-reconnect sync job
func NewSyncJob(engine Syncer) *SyncJob {
	return &SyncJob{engine: engine}
}

func (j *SyncJob) Name() string { return JobNameSync }

func (j *SyncJob) Process(ctx context.Context) error {
	summary, err := j.engine.Sync(ctx)
	if err != nil {
		return err
	}
	if summary.Ran {
		logger.FromContext(ctx).Debug(LogMsgSyncCycleFinished,
			"succeeded", summary.Succeeded,
			"failed", summary.Failed,
			"remaining", summary.Remaining)
	}
	return nil
}

// ProbeJob pings the remote and feeds the result to the connectivity monitor
type ProbeJob struct {
	monitor Prober
	remote  connectivity.Pinger
}

// NewProbeJob creates the active connectivity probe
func NewProbeJob(monitor Prober, remote connectivity.Pinger) *ProbeJob {
	return &ProbeJob{monitor: monitor, remote: remote}
}

func (j *ProbeJob) Name() string { return JobNameProbe }

func (j *ProbeJob) Process(ctx context.Context) error {
	online := j.monitor.Probe(ctx, j.remote)
	logger.FromContext(ctx).Debug(LogMsgProbeFinished, "online", online)
	return nil
}
