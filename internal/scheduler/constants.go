package scheduler

const (
	LogMsgJobScheduled = "Job scheduled"
	LogMsgJobDisabled  = "Job disabled by a zero interval"
)
