package worker

// Log Messages - Worker Pool
const (
	LogMsgWorkerJobFailed  = "Worker job failed"
	LogMsgWorkerJobDropped = "Worker queue full, job dropped"
	LogMsgPoolStopped      = "Worker pool stopped"
)

// Log Messages - Jobs
const (
	LogMsgSyncCycleFinished = "Scheduled sync cycle finished"
	LogMsgProbeFinished     = "Connectivity probe finished"
)

// Job names, used as the log and metric label
const (
	JobNameSync  = "sync"
	JobNameProbe = "connectivity_probe"
)

// Pool sizing for a terminal: a sync and a probe may overlap, nothing more
const (
	DefaultWorkers   = 2
	DefaultQueueSize = 8
)
