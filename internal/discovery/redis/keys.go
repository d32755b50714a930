package redis

import "strings"

// 键前缀沿用 RSA 生态的既有布局，保证与其他实现互操作
const (
	frameworkKeyPrefix = "pelix/remote/frameworks/"
	serviceKeyPrefix   = "pelix/remote/services/"
	keyPattern         = "pelix/remote/*"
)

// frameworkKey 框架心跳键
func frameworkKey(fwUID string) string {
	return frameworkKeyPrefix + fwUID
}

// serviceKey 端点键
func serviceKey(fwUID, uid string) string {
	return serviceKeyPrefix + fwUID + "/" + uid
}

// parseFrameworkKey 解析心跳键，返回框架 UID
func parseFrameworkKey(key string) (string, bool) {
	fwUID, ok := strings.CutPrefix(key, frameworkKeyPrefix)
	if !ok || fwUID == "" || strings.Contains(fwUID, "/") {
		return "", false
	}
	return fwUID, true
}

// parseServiceKey 解析端点键，返回框架 UID 与端点 UID
func parseServiceKey(key string) (fwUID, uid string, ok bool) {
	rest, found := strings.CutPrefix(key, serviceKeyPrefix)
	if !found {
		return "", "", false
	}
	fwUID, uid, found = strings.Cut(rest, "/")
	if !found || fwUID == "" || uid == "" || strings.Contains(uid, "/") {
		return "", "", false
	}
	return fwUID, uid, true
}
