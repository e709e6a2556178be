package ref

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

// TypeOptions 通过命名空间和类型名描述一个可构造的组件
// 常见用法是在配置文件中声明日志器、输出器、ID 生成器等
type TypeOptions struct {
	Namespace string `cfg:"namespace"`
	Type      string `cfg:"type"`
	Options   any    `cfg:"options"`
}

// Convertable 可以把自身转换成任意结构体的配置数据
// 当 options 实现了此接口时，New 会先把它转换成构造函数期望的参数类型
type Convertable interface {
	ConvertTo(object any) error
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type constructor struct {
	fn           reflect.Value
	paramType    reflect.Type // nil 表示无参构造函数
	returnsError bool
}

func newConstructor(fn any) (*constructor, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, errors.Errorf("constructor must be a function, got %T", fn)
	}

	ft := fv.Type()
	if ft.NumIn() > 1 {
		return nil, errors.Errorf("constructor must have 0 or 1 input parameters, got %d", ft.NumIn())
	}
	if ft.NumOut() != 1 && ft.NumOut() != 2 {
		return nil, errors.Errorf("constructor must have 1 or 2 return values, got %d", ft.NumOut())
	}
	if ft.NumOut() == 2 && !ft.Out(1).Implements(errorType) {
		return nil, errors.New("second return value must be error type")
	}

	c := &constructor{fn: fv, returnsError: ft.NumOut() == 2}
	if ft.NumIn() == 1 {
		c.paramType = ft.In(0)
	}
	return c, nil
}

func (c *constructor) call(options any) (any, error) {
	var args []reflect.Value
	if c.paramType != nil {
		param, err := c.param(options)
		if err != nil {
			return nil, err
		}
		args = []reflect.Value{param}
	}

	results := c.fn.Call(args)
	if c.returnsError && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}

// param 把 options 转成构造函数的参数
func (c *constructor) param(options any) (reflect.Value, error) {
	if options == nil {
		return reflect.Value{}, errors.New("constructor requires options but got nil")
	}

	if convertable, ok := options.(Convertable); ok {
		if c.paramType.Kind() == reflect.Ptr {
			target := reflect.New(c.paramType.Elem())
			if err := convertable.ConvertTo(target.Interface()); err != nil {
				return reflect.Value{}, errors.Wrapf(err, "convert options to %v failed", c.paramType)
			}
			return target, nil
		}
		target := reflect.New(c.paramType)
		if err := convertable.ConvertTo(target.Interface()); err != nil {
			return reflect.Value{}, errors.Wrapf(err, "convert options to %v failed", c.paramType)
		}
		return target.Elem(), nil
	}

	value := reflect.ValueOf(options)
	if !value.Type().AssignableTo(c.paramType) {
		return reflect.Value{}, errors.Errorf("options type %T is not assignable to %v", options, c.paramType)
	}
	return value, nil
}

var constructors sync.Map

func key(namespace string, typ string) string {
	return namespace + ":" + typ
}

// Register 注册构造函数，相同函数重复注册是幂等的
func Register(namespace string, typ string, fn any) error {
	c, err := newConstructor(fn)
	if err != nil {
		return errors.WithMessagef(err, "register %s:%s failed", namespace, typ)
	}

	if existing, loaded := constructors.LoadOrStore(key(namespace, typ), c); loaded {
		if existing.(*constructor).fn.Pointer() != c.fn.Pointer() {
			return errors.Errorf("constructor for %s:%s already registered with different function", namespace, typ)
		}
	}
	return nil
}

// RegisterT 以类型 T 的包路径和类型名作为命名空间和类型注册
func RegisterT[T any](fn any) error {
	namespace, typ, err := typeKey[T]()
	if err != nil {
		return err
	}
	return Register(namespace, typ, fn)
}

func MustRegister(namespace string, typ string, fn any) {
	if err := Register(namespace, typ, fn); err != nil {
		panic(err)
	}
}

func MustRegisterT[T any](fn any) {
	if err := RegisterT[T](fn); err != nil {
		panic(err)
	}
}

// New 调用已注册的构造函数创建对象
func New(namespace string, typ string, options any) (any, error) {
	value, ok := constructors.Load(key(namespace, typ))
	if !ok {
		return nil, errors.Errorf("constructor not found for %s:%s", namespace, typ)
	}
	return value.(*constructor).call(options)
}

// NewWithOptions 根据 TypeOptions 创建对象
func NewWithOptions(options *TypeOptions) (any, error) {
	if options == nil {
		return nil, errors.New("type options is nil")
	}
	return New(options.Namespace, options.Type, options.Options)
}

func NewT[T any](options any) (T, error) {
	var zero T
	namespace, typ, err := typeKey[T]()
	if err != nil {
		return zero, err
	}

	obj, err := New(namespace, typ, options)
	if err != nil {
		return zero, err
	}
	result, ok := obj.(T)
	if !ok {
		return zero, errors.Errorf("created object %T is not of type %T", obj, zero)
	}
	return result, nil
}

func typeKey[T any]() (string, string, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return "", "", errors.Errorf("cannot determine package path or type name for %v", t)
	}
	return t.PkgPath(), t.Name(), nil
}
