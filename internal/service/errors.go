package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthExpired 上游 authkey 已过期，需要重新获取抽卡链接，不可重试
	ErrAuthExpired = errors.New("gacha: authkey expired, request a new export link")

	// ErrRecomputeBusy 五星间隔重算已有实例在运行
	ErrRecomputeBusy = errors.New("fivestar: recompute already in progress")

	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
)

// InvalidLinkError 抽卡链接缺少必要参数
type InvalidLinkError struct {
	Missing []string
}

func (e *InvalidLinkError) Error() string {
	return fmt.Sprintf("gacha: export link missing required params: %s", strings.Join(e.Missing, ", "))
}

// UpstreamError 上游返回了业务失败码（外层 HTTP 传输是成功的）
type UpstreamError struct {
	Code    int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gacha: upstream error %d: %s", e.Code, e.Message)
}

// TransientError 网络超时或连接失败，调用方可重试
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("gacha: transient failure during %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
