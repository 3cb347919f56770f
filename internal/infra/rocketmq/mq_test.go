package rocketmq

import "testing"

func TestShutdownWithoutProducer(t *testing.T) {
	// 生产者未初始化时应为空操作，不触发初始化也不 panic
	Shutdown()
}
