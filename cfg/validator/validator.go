package validator

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

// validator.Validate 会缓存结构体的解析结果，全局复用一个实例
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct 校验结构体或结构体指针，其他类型直接忽略
func ValidateStruct(object any) error {
	rv := reflect.ValueOf(object)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(rv.Interface())
}
