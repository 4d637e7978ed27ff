package captcha

import (
	"context"
	"sync"
)

// StaticVerifier 返回固定结果的 Verifier，用于测试与本地开发
type StaticVerifier struct {
	Result bool
	Err    error

	mu     sync.Mutex
	params []string
}

func (s *StaticVerifier) Verify(ctx context.Context, verifyParam, remoteIP string) (bool, error) {
	s.mu.Lock()
	s.params = append(s.params, verifyParam)
	s.mu.Unlock()

	if s.Err != nil {
		return false, s.Err
	}
	return s.Result, nil
}

func (s *StaticVerifier) Enabled() bool { return true }

// Params 返回收到的 verifyParam
func (s *StaticVerifier) Params() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.params...)
}
