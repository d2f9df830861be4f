package service

import (
	"github.com/invinciblehaolong/halolab/pkg/logger"
	"github.com/invinciblehaolong/halolab/pkg/security"
)

// staticUser 内置账号，当前不落库
type staticUser struct {
	Username string
	Password string
	Role     string
}

var staticUsers = []staticUser{
	{Username: "admin", Password: "123456", Role: "admin"},
	{Username: "user_halo", Password: "123456", Role: "user"},
}

// LoginResult 登录成功后的返回
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// AuthService 登录与签发 token
type AuthService struct {
	jwtMgr *security.JWTManager
	logger logger.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(jwtMgr *security.JWTManager, l logger.Logger) *AuthService {
	if l == nil {
		l = logger.Default()
	}
	return &AuthService{
		jwtMgr: jwtMgr,
		logger: l.Named("service.auth"),
	}
}

// Login 校验静态账号并签发 JWT。
// 用户名不存在和密码错误对外不做区分，避免探测账号。
func (s *AuthService) Login(username, password string) (*LoginResult, error) {
	for _, u := range staticUsers {
		if u.Username != username {
			continue
		}
		if u.Password != password {
			s.logger.Warn("login failed, password mismatch", "username", username)
			return nil, ErrInvalidCredentials
		}
		token, err := s.jwtMgr.GenerateToken(&security.Claims{
			Payload: map[string]any{
				"username": u.Username,
				"role":     u.Role,
			},
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("login succeeded", "username", username, "role", u.Role)
		return &LoginResult{Token: token, Username: u.Username, Role: u.Role}, nil
	}
	s.logger.Warn("login failed, unknown username", "username", username)
	return nil, ErrInvalidCredentials
}
