package config

// Input 指定路网输入数据的配置项（MongoDB、文件系统）
// 功能：定义路网文档的来源
// 说明：File非空时优先从文件读取，否则从MongoDB的{DB}.{Col}读取
type Input struct {
	URI  string `yaml:"uri,omitempty" validate:"required_without=File"`                  // MongoDB连接字符串
	DB   string `yaml:"db,omitempty" validate:"required_with=URI"`                       // 数据库名
	Col  string `yaml:"col,omitempty" validate:"required_with=URI"`                      // 集合名
	File string `yaml:"file,omitempty" validate:"omitempty,endswith=.yaml|endswith=.yml"` // YAML路网文件
}

// GeometryControl 几何计算相关参数
type GeometryControl struct {
	SampleStep     float64 `yaml:"sample_step,omitempty" validate:"gte=0"`     // 参考线采样步长(m)，0表示使用默认值
	NearestSamples int     `yaml:"nearest_samples,omitempty" validate:"gte=0"` // 最近点粗搜索的采样数，0表示使用默认值
}

// JunctionControl 路口连接选择相关参数
type JunctionControl struct {
	SeedOffset    uint64 `yaml:"seed_offset,omitempty"`   // 随机种子偏移量，叠加在路口ID上
	Deterministic bool   `yaml:"deterministic,omitempty"` // 为true时GetNextRoad总是选择第一个匹配的连接
}

// Control 计算控制配置
type Control struct {
	Geometry GeometryControl `yaml:"geometry"`
	Junction JunctionControl `yaml:"junction"`
}

// Output 输出配置
type Output struct {
	GeoJSON string  `yaml:"geojson" validate:"required"`      // GeoJSON输出文件路径
	Step    float64 `yaml:"step,omitempty" validate:"gte=0"` // 导出采样步长(m)
}

// Config YAML配置文件的根结构
// 功能：定义整个程序的配置结构
// 说明：包含输入、控制、输出等所有配置项
type Config struct {
	Input   Input   `yaml:"input"`                                 // 输入
	Control Control `yaml:"control"`                               // 计算过程控制
	Output  *Output `yaml:"output,omitempty" validate:"omitempty"` // 输出，为空则不导出
}
