package core

import "time"

// DefaultTopK 是推荐结果的默认截断长度。
const DefaultTopK = 20

// RecommendConfig 是推荐相关的配置接口，用于提供默认值。
type RecommendConfig interface {
	// DefaultTopK 返回默认的 TopK 结果数
	DefaultTopK() int

	// DefaultFetchTimeout 返回拉取候选池的默认超时时间
	DefaultFetchTimeout() time.Duration

	// DefaultSourcePath 返回上游目录服务的默认候选池路径
	DefaultSourcePath() string
}

// DefaultRecommendConfig 是默认的推荐配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultTopK() int {
	return DefaultTopK
}

func (c *DefaultRecommendConfig) DefaultFetchTimeout() time.Duration {
	return 10 * time.Second
}

func (c *DefaultRecommendConfig) DefaultSourcePath() string {
	return "/igdb/popular"
}
