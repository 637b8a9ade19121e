package services

import "errors"

// 业务错误按种类定义为哨兵值，handlers 用 errors.Is 映射到 HTTP 状态码。
// 除下列已知冲突/缺失情况外，后端的意外失败一律折叠为 ErrUnavailable，
// 具体原因只写入内部日志，不暴露给调用方。
var (
	// ErrBlobExists 对象存储中已存在同名文件
	ErrBlobExists = errors.New("文件在对象存储中已存在")
	// ErrRecordExists 数据库中已存在同名有效记录
	ErrRecordExists = errors.New("文件记录在数据库中已存在")
	// ErrBlobNotFound 对象存储中不存在该文件
	ErrBlobNotFound = errors.New("文件在对象存储中不存在")
	// ErrRecordNotFound 数据库中不存在有效记录
	ErrRecordNotFound = errors.New("文件记录在数据库中不存在")
	// ErrUnavailable 后端意外失败
	ErrUnavailable = errors.New("存储服务暂时不可用")
)

// Reason 返回错误对应的机器可读原因码
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrBlobExists):
		return "BLOB_ALREADY_EXISTS"
	case errors.Is(err, ErrRecordExists):
		return "RECORD_ALREADY_EXISTS"
	case errors.Is(err, ErrBlobNotFound):
		return "BLOB_NOT_FOUND"
	case errors.Is(err, ErrRecordNotFound):
		return "RECORD_NOT_FOUND"
	default:
		return "UNAVAILABLE"
	}
}
