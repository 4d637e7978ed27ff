package utils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// jsSpace 与浏览器端正则的 \s 等价，RE2 的 \s 只含 ASCII 空白
const jsSpace = `\s\v\p{Z}\x{FEFF}`

var (
	emailRegex        = regexp.MustCompile(`^[^` + jsSpace + `@]+@[^` + jsSpace + `@]+\.[^` + jsSpace + `@]+$`)
	strictPhoneRegex  = regexp.MustCompile(`^[6-9]\d{9}$`) // 印度 10 位手机号
	lenientPhoneRegex = regexp.MustCompile(`^[0-9` + jsSpace + `\-+()]+$`)
)

func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePhone strict 为 true 时只接受印度手机号，否则只限制字符集
func ValidatePhone(phone string, strict bool) bool {
	if strict {
		return strictPhoneRegex.MatchString(phone)
	}
	return lenientPhoneRegex.MatchString(phone)
}

// IsSpace 与浏览器端 String.prototype.trim 判定的空白一致
func IsSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\uFEFF':
		return true
	}
	return unicode.In(r, unicode.Z)
}

// TrimSpace 去除首尾空白，空白集合见 IsSpace
func TrimSpace(s string) string {
	return strings.TrimFunc(s, IsSpace)
}

// TrimmedLen 去除首尾空白后的字符数（按 rune 计）
func TrimmedLen(s string) int {
	return utf8.RuneCountInString(TrimSpace(s))
}
