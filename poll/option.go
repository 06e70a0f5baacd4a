package poll

// Option 可选项
type Option func(client *Client)

// WithReadyQueueSize 就绪队列长度
func WithReadyQueueSize(size int) Option {
	return func(client *Client) {
		if size > 0 {
			client.readyQueueSize = size
		}
	}
}

// WithHandler 配置handler
func WithHandler(h Handler) Option {
	return func(client *Client) {
		if h != nil {
			client.handler = h
		}
	}
}

// WithRetryRandValue 单位ms
// 默认随机值上限, 当就绪队列满时, 请求以随机延迟重新入队
func WithRetryRandValue(v int) Option {
	return func(client *Client) {
		if v > 0 {
			client.randValue = v
		}
	}
}

// WithPanicHandle 发生panic回调,主要用于调试
func WithPanicHandle(f func(interface{})) Option {
	return func(client *Client) {
		if f != nil {
			client.panicHandle = f
		}
	}
}
