package logger

// 确保 NoopLogger 实现了 Logger 接口
var _ Logger = (*NoopLogger)(nil)

// NoopLogger 空日志记录器，测试时使用
type NoopLogger struct{}

// Noop 创建空日志记录器
func Noop() *NoopLogger {
	return &NoopLogger{}
}

func (n *NoopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (n *NoopLogger) Error(msg string, keysAndValues ...interface{}) {}

func (n *NoopLogger) Named(name string) Logger                       { return n }
func (n *NoopLogger) WithFields(keysAndValues ...interface{}) Logger { return n }

func (n *NoopLogger) Sync() error { return nil }
