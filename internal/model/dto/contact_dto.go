package dto

// ========== Contact 表单 DTO ==========

// 请求体字段名
const (
	FieldFullName     = "fullName"
	FieldPhoneNumber  = "phoneNumber"
	FieldEmailAddress = "emailAddress"
	FieldSubject      = "subject"
	FieldMessage      = "message"
	FieldCaptcha      = "captchaVerifyParam"
)

// RequiredFields 校验顺序即此顺序
var RequiredFields = []string{
	FieldFullName,
	FieldPhoneNumber,
	FieldEmailAddress,
	FieldSubject,
	FieldMessage,
}

// ContactRequest 联系表单请求
type ContactRequest struct {
	FullName           string `json:"fullName"`
	PhoneNumber        string `json:"phoneNumber"`
	EmailAddress       string `json:"emailAddress"`
	Subject            string `json:"subject"`
	Message            string `json:"message"`
	CaptchaVerifyParam string `json:"captchaVerifyParam,omitempty"`
}

// ContactRequestFromPayload 从未定型的 JSON 对象中提取字段
// 非字符串类型的值视为缺失
func ContactRequestFromPayload(payload map[string]interface{}) ContactRequest {
	str := func(key string) string {
		if v, ok := payload[key].(string); ok {
			return v
		}
		return ""
	}

	return ContactRequest{
		FullName:           str(FieldFullName),
		PhoneNumber:        str(FieldPhoneNumber),
		EmailAddress:       str(FieldEmailAddress),
		Subject:            str(FieldSubject),
		Message:            str(FieldMessage),
		CaptchaVerifyParam: str(FieldCaptcha),
	}
}

// Value 按字段名取值
func (r ContactRequest) Value(field string) string {
	switch field {
	case FieldFullName:
		return r.FullName
	case FieldPhoneNumber:
		return r.PhoneNumber
	case FieldEmailAddress:
		return r.EmailAddress
	case FieldSubject:
		return r.Subject
	case FieldMessage:
		return r.Message
	case FieldCaptcha:
		return r.CaptchaVerifyParam
	default:
		return ""
	}
}
