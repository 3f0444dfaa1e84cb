package entity

import "github.com/tsinghua-fib-lab/odrmap/utils/config"

// IMapContext 路网上下文
// 功能：向Road/Junction提供跨实体查找能力与运行时配置
// 说明：由hdmap.Map实现，实体只持有该接口，不直接依赖hdmap
type IMapContext interface {
	RoadManager() IRoadManager
	JunctionManager() IJunctionManager
	RuntimeConfig() *config.RuntimeConfig
}
