package constant

// outbox 消息状态
const (
	OutboxStatusPending = 1 // 待发送
	OutboxStatusSent    = 2 // 已发送
	OutboxStatusFailed  = 3 // 永久失败（重试耗尽）
)

// outbox 最大重试次数，超过后置为永久失败
const OutboxMaxRetry = 10
