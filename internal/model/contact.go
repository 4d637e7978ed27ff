package model

import (
	"time"

	"ContactIntake/utils"
)

// TimestampLayout 写入表格的时间格式（UTC ISO-8601）
const TimestampLayout = time.RFC3339

// ContactSubmission 一次联系表单提交，只在请求期间存在
type ContactSubmission struct {
	FullName     string
	PhoneNumber  string
	EmailAddress string
	Subject      string
	Message      string
	SubmittedAt  time.Time
}

// Row 按固定列顺序构造表格行：
// 姓名、电话、邮箱、主题、留言、提交时间
func (s ContactSubmission) Row() []interface{} {
	return []interface{}{
		utils.TrimSpace(s.FullName),
		s.PhoneNumber,
		utils.TrimSpace(s.EmailAddress),
		s.Subject,
		utils.TrimSpace(s.Message),
		s.SubmittedAt.UTC().Format(TimestampLayout),
	}
}
