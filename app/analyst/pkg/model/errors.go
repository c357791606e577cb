package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation 公司数据缺少必填字段
	ErrValidation = errors.New("invalid company record")
	// ErrParse 数值字段格式错误
	ErrParse = errors.New("malformed numeric field")
	// ErrProvider Insight Provider 调用失败或返回空
	ErrProvider = errors.New("insight provider failed")
	// ErrTimeout 分析超时
	ErrTimeout = errors.New("analysis timed out")
	// ErrBatch 没有任何公司分析成功
	ErrBatch = errors.New("no valid company analysis")
)

// ValidationError 缺失字段列表
type ValidationError struct {
	Company string
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("company %q missing required fields: %s", e.Company, strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ParseError 数值字段解析失败
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }
