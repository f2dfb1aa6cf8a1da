package authz

import (
	"fmt"
	"strings"
)

const (
	apiV1Prefix = "/api/v1"
	rolePrefix  = "role:"
	roleAnchor  = "role:__anchor__"
)

var allowedActions = map[string]struct{}{
	"GET":    {},
	"POST":   {},
	"PUT":    {},
	"PATCH":  {},
	"DELETE": {},
	"*":      {},
}

// SubjectForAdmin 管理员主体标识
func SubjectForAdmin(adminID uint) string {
	return fmt.Sprintf("admin:%d", adminID)
}

// NormalizeRole 角色名统一为 role:<小写名称>，空格替换为下划线
// 只允许字母、数字、下划线与连字符
func NormalizeRole(role string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(role))
	name = strings.TrimPrefix(name, rolePrefix)
	name = strings.Join(strings.Fields(name), "_")
	if name == "" {
		return "", ErrRoleRequired
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return "", fmt.Errorf("%w: %q", ErrRoleInvalid, role)
		}
	}
	normalized := rolePrefix + name
	if normalized == roleAnchor {
		return "", ErrRoleReserved
	}
	return normalized, nil
}

// NormalizeObject 统一资源路径：去掉 /api/v1 前缀、查询串与末尾斜杠
func NormalizeObject(object string) string {
	path := strings.TrimSpace(object)
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path == apiV1Prefix || strings.HasPrefix(path, apiV1Prefix+"/") {
		path = strings.TrimPrefix(path, apiV1Prefix)
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}

// NormalizeAction 动作统一为大写
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}

func validateAction(action string) (string, error) {
	normalized := NormalizeAction(action)
	if _, ok := allowedActions[normalized]; !ok {
		return "", fmt.Errorf("%w: %q", ErrActionInvalid, action)
	}
	return normalized, nil
}
