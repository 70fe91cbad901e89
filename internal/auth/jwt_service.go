// Package auth 解析外部身份提供方签发的 JWT，得到用户 ID 与角色
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/anoixa/image-craft/config"
	"github.com/golang-jwt/jwt/v5"
)

// 角色
const (
	RoleStaff = "staff"
	RoleUser  = "user"
)

// MinSecretLength HS256 密钥最小长度
const MinSecretLength = 32

var (
	// ErrInvalidToken 令牌无法解析、签名不符或已过期
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidRole 未知角色
	ErrInvalidRole = errors.New("invalid role")
)

// Identity 一次请求的身份
type Identity struct {
	UserID uint
	Role   string
}

// IsStaff 是否为管理员
func (i Identity) IsStaff() bool {
	return i.Role == RoleStaff
}

// Claims 令牌声明
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenConfig JWT 配置
type TokenConfig struct {
	Secret    []byte
	Issuer    string
	ExpiresIn time.Duration
}

// JWTService 签发与校验 HS256 令牌
type JWTService struct {
	config TokenConfig
	now    func() time.Time
}

// NewJWTService 创建 JWT 服务，密钥过短时返回错误
func NewJWTService(cfg TokenConfig) (*JWTService, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("JWT secret must be at least %d characters long, got %d", MinSecretLength, len(cfg.Secret))
	}
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = 24 * time.Hour
	}
	return &JWTService{config: cfg, now: time.Now}, nil
}

// NewJWTServiceFromConfig 从全局配置创建
func NewJWTServiceFromConfig(cfg *config.Config) (*JWTService, error) {
	return NewJWTService(TokenConfig{
		Secret:    []byte(cfg.JWTSecret),
		Issuer:    cfg.JWTIssuer,
		ExpiresIn: cfg.JWTExpiresIn,
	})
}

// GenerateAccessToken 签发访问令牌，主要给 CLI 调试使用
func (s *JWTService) GenerateAccessToken(userID uint, role string) (string, time.Time, error) {
	if userID == 0 {
		return "", time.Time{}, errors.New("user id is required")
	}
	if !validRole(role) {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	now := s.now()
	expiry := now.Add(s.config.ExpiresIn)
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, expiry, nil
}

// ParseToken 校验令牌并返回身份，缺省角色为 user
func (s *JWTService) ParseToken(tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.config.Secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: user_id not found in token claims", ErrInvalidToken)
	}

	role := claims.Role
	if role == "" {
		role = RoleUser
	}
	if !validRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	return &Identity{UserID: claims.UserID, Role: role}, nil
}

func validRole(role string) bool {
	return role == RoleStaff || role == RoleUser
}
