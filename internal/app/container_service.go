package app

import (
	"context"

	"github.com/ananas-next/internal/provider"
)

// ContainerService 托管容器的后台协程与外部连接
type ContainerService struct {
	container *provider.Container
}

// NewContainerService 创建容器托管服务
func NewContainerService(c *provider.Container) *ContainerService {
	return &ContainerService{container: c}
}

// Name 服务名称
func (s *ContainerService) Name() string {
	return "container"
}

// Start 启动事件发布协程并阻塞到退出信号
func (s *ContainerService) Start(ctx context.Context) error {
	if s.container != nil {
		s.container.StartBackground(ctx)
	}
	<-ctx.Done()
	return nil
}

// Stop 关闭事件发布、队列与缓存连接
func (s *ContainerService) Stop(_ context.Context) error {
	s.container.Close()
	return nil
}
