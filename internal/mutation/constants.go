package mutation

// Log messages
const (
	LogMsgConfirmed         = "Change confirmed by remote"
	LogMsgQueued            = "Change queued for sync"
	LogMsgDirectWriteFailed = "Direct write failed, queueing for sync"
	LogMsgBehindQueued      = "Record has queued changes, queueing behind them"
)

// Error messages
const (
	ErrMsgQueueChange = "failed to queue change"
)
