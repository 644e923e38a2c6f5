package polars

import (
	"fmt"

	"github.com/isesword/polars-go-interop/interop"
	"github.com/isesword/polars-go-interop/value"
)

// StrLenBytes 计算字符串字节长度
func (e Expr) StrLenBytes() Expr { return e.unary("str_len_bytes") }

// StrLenChars 计算字符串字符长度
func (e Expr) StrLenChars() Expr { return e.unary("str_len_chars") }

// StrContains 判断字符串是否包含子串/正则
func (e Expr) StrContains(pattern string, literal bool) Expr {
	return e.unary("str_contains", value.String(pattern), value.Bool(literal))
}

// StrStartsWith 判断字符串是否以指定前缀开头
func (e Expr) StrStartsWith(prefix string) Expr {
	return e.unary("str_starts_with", value.String(prefix))
}

// StrEndsWith 判断字符串是否以指定后缀结尾
func (e Expr) StrEndsWith(suffix string) Expr {
	return e.unary("str_ends_with", value.String(suffix))
}

var groupIndexCodec = interop.Coerced[uint]()

// StrExtract 使用正则提取分组
func (e Expr) StrExtract(pattern string, groupIndex int) Expr {
	return e.unaryErr("str_extract", enc(interop.String, pattern), enc(groupIndexCodec, groupIndex))
}

// StrReplace 替换第一个匹配
func (e Expr) StrReplace(pattern, replacement string, literal bool) Expr {
	return e.unary("str_replace", value.String(pattern), value.String(replacement), value.Bool(literal))
}

// StrReplaceAll 替换全部匹配
func (e Expr) StrReplaceAll(pattern, replacement string, literal bool) Expr {
	return e.unary("str_replace_all", value.String(pattern), value.String(replacement), value.Bool(literal))
}

// StrToLowercase 转为小写
func (e Expr) StrToLowercase() Expr { return e.unary("str_to_lowercase") }

// StrToUppercase 转为大写
func (e Expr) StrToUppercase() Expr { return e.unary("str_to_uppercase") }

// StrStripChars 修剪指定字符（空字符串表示空白字符）
func (e Expr) StrStripChars(chars string) Expr {
	c := value.None()
	if chars != "" {
		c = value.Some(value.String(chars))
	}
	return e.unary("str_strip_chars", c)
}

var strLengthOption = interop.CoercedOption[uint64]()

// StrSlice 字符串切片（length 可选）
func (e Expr) StrSlice(offset int, length *int) Expr {
	return e.unaryErr("str_slice", enc(interop.Int64, int64(offset)), enc(strLengthOption, length))
}

// StrSplit 按分隔符拆分
func (e Expr) StrSplit(by string) Expr { return e.unary("str_split", value.String(by)) }

var padLengthCodec = interop.Coerced[uint]()

func padChar(fillChar string) func() (value.Value, error) {
	return func() (value.Value, error) {
		r := []rune(fillChar)
		if len(r) != 1 {
			return value.Value{}, fmt.Errorf("fill character must be a single character, got %q", fillChar)
		}
		return value.String(fillChar), nil
	}
}

// StrPadStart 左侧填充
func (e Expr) StrPadStart(length int, fillChar string) Expr {
	return e.unaryErr("str_pad_start", enc(padLengthCodec, length), padChar(fillChar))
}

// StrPadEnd 右侧填充
func (e Expr) StrPadEnd(length int, fillChar string) Expr {
	return e.unaryErr("str_pad_end", enc(padLengthCodec, length), padChar(fillChar))
}

// StrStrptime parses strings into dataType with a strftime format.
func (e Expr) StrStrptime(dataType DataType, format string) Expr {
	switch dataType.Kind {
	case TypeDate, TypeDatetime, TypeTime:
	default:
		return errExpr("str_strptime: cannot parse into %s", dataType)
	}
	return e.unaryErr("str_strptime", enc(dataTypeCodec, dataType), enc(interop.String, format))
}
