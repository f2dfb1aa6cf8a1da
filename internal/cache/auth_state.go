package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/ananas-next/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// UserAuthState 顾客鉴权快照，中间件用它校验 token 版本与账号状态，命中时不查库
type UserAuthState struct {
	UserID       uint   `json:"user_id"`
	Status       string `json:"status"`
	TokenVersion uint64 `json:"token_version"`
	UpdatedAt    int64  `json:"updated_at"`
}

// AdminAuthState 管理员鉴权快照
type AdminAuthState struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	IsSuper      bool   `json:"is_super"`
	UpdatedAt    int64  `json:"updated_at"`
}

// snapshotStore 按 ID 存取的 JSON 快照
type snapshotStore[T any] struct {
	prefix string
	ttl    time.Duration
}

var (
	userAuthStates  = snapshotStore[UserAuthState]{prefix: "auth:user:", ttl: authStateCacheTTL}
	adminAuthStates = snapshotStore[AdminAuthState]{prefix: "auth:admin:", ttl: authStateCacheTTL}
)

func (s snapshotStore[T]) key(id uint) string {
	return s.prefix + strconv.FormatUint(uint64(id), 10)
}

func (s snapshotStore[T]) get(ctx context.Context, id uint) (*T, bool, error) {
	if id == 0 {
		return nil, false, nil
	}
	var value T
	hit, err := GetJSON(ctx, s.key(id), &value)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &value, true, nil
}

func (s snapshotStore[T]) set(ctx context.Context, id uint, value *T) error {
	if id == 0 || value == nil {
		return nil
	}
	return SetJSON(ctx, s.key(id), value, s.ttl)
}

// BuildUserAuthState 从用户模型构建鉴权快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{
		UserID:       user.ID,
		Status:       user.Status,
		TokenVersion: user.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
}

// BuildAdminAuthState 从管理员模型构建鉴权快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	return &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
		UpdatedAt:    time.Now().Unix(),
	}
}

// GetUserAuthState 读取顾客快照；缓存关闭时返回未命中
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	return userAuthStates.get(ctx, userID)
}

// SetUserAuthState 写入顾客快照
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil {
		return nil
	}
	return userAuthStates.set(ctx, state.UserID, state)
}

// GetAdminAuthState 读取管理员快照
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	return adminAuthStates.get(ctx, adminID)
}

// SetAdminAuthState 写入管理员快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil {
		return nil
	}
	return adminAuthStates.set(ctx, state.AdminID, state)
}
