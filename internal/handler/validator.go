package handler

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// maxUserIdLength 与 user_info.uuid 列宽一致
const maxUserIdLength = 20

// Trans 参数错误提示使用的翻译器
var Trans ut.Translator

// userIdMessages 自定义 userid 规则在各语言下的提示
var userIdMessages = map[string]string{
	"zh": "{0}必须是有效的用户ID",
	"en": "{0} must be a valid user id",
}

// InitTrans 初始化 gin 绑定使用的校验器：字段名取 json/form tag，注册 userid 规则和对应语言的提示
// locale 取 "zh" 或 "en"，其他值按 "en" 处理
func InitTrans(locale string) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	v.RegisterTagNameFunc(fieldName)
	if err := v.RegisterValidation("userid", validUserId); err != nil {
		return err
	}

	zhT, enT := zh.New(), en.New()
	uni := ut.New(enT, zhT, enT)
	if locale != "zh" {
		locale = "en"
	}
	Trans, _ = uni.GetTranslator(locale)

	var err error
	if locale == "zh" {
		err = zh_translations.RegisterDefaultTranslations(v, Trans)
	} else {
		err = en_translations.RegisterDefaultTranslations(v, Trans)
	}
	if err != nil {
		return err
	}

	msg := userIdMessages[locale]
	return v.RegisterTranslation("userid", Trans,
		func(t ut.Translator) error { return t.Add("userid", msg, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T("userid", fe.Field())
			return s
		})
}

// fieldName 提示中使用请求里的字段名（如 target_id），而不是 Go 字段名
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// validUserId 用户ID：非空、不超过列宽、不含空白
func validUserId(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if id == "" || utf8.RuneCountInString(id) > maxUserIdLength {
		return false
	}
	return strings.IndexFunc(id, unicode.IsSpace) < 0
}

// trimStructPrefix 去掉 "FriendTargetRequest.target_id" 这类键里的结构体名
func trimStructPrefix(fields map[string]string) map[string]string {
	res := make(map[string]string, len(fields))
	for field, msg := range fields {
		res[field[strings.Index(field, ".")+1:]] = msg
	}
	return res
}
