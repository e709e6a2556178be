package storage

// Storage 层级化的配置数据
type Storage interface {
	// Sub 获取子配置，key 支持 "a.b[0].c" 形式
	Sub(key string) Storage

	// ConvertTo 把配置转换成结构体、map 或 slice
	// 结构体在转换后会依次填充 def 默认值并执行 validate 校验
	ConvertTo(object any) error
}
