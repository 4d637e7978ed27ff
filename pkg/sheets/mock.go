package sheets

import (
	"context"
	"errors"
	"sync"
	"time"
)

type MockCall struct {
	Row  []interface{}
	Mode InputMode
}

// MockClient 可配置的表格客户端 mock，实现 Client 接口
type MockClient struct {
	mu    sync.Mutex
	calls []MockCall

	// Err 非空时每次调用都返回该错误
	Err error
	// Delay 模拟网络耗时，期间 ctx 取消会返回 ctx.Err()
	Delay time.Duration
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) AppendRow(ctx context.Context, row []interface{}, mode InputMode) error {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	cp := make([]interface{}, len(row))
	copy(cp, row)
	m.calls = append(m.calls, MockCall{Row: cp, Mode: mode})
	return nil
}

// Calls 返回成功追加的行
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// ErrMockAppend 测试中常用的失败错误
var ErrMockAppend = errors.New("mock sheets append failure")
