package entity

// Manager依赖倒置

// entity/road/manager.go的依赖倒置
type IRoadManager interface {
	// 输入Road ID，查找Road，如果不存在则panic
	Get(id int32) IRoad
	// 输入Road ID，查找Road，如果不存在则返回error
	GetOrError(id int32) (IRoad, error)
	// 全部Road，按ID升序
	All() []IRoad
}

// entity/junction/manager.go的依赖倒置
type IJunctionManager interface {
	// 输入Junction ID，查找Junction，如果不存在则panic
	Get(id int32) IJunction
	// 输入Junction ID，查找Junction，如果不存在则返回error
	GetOrError(id int32) (IJunction, error)
	// 全部Junction，按ID升序
	All() []IJunction
}
