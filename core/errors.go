package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），包装过的错误同样可识别
//
// 使用场景：
//   - 推荐错误：EMPTY_LIKED_SET, EMPTY_CANDIDATE_POOL（需要上报给调用方）
//   - 单个游戏数据错误：MALFORMED_GAME（在 Vectorizer 内部恢复，不向上传播）
//   - 目录服务错误：UNAVAILABLE
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
type DomainError struct {
	Code    string // 错误代码（如 "EMPTY_LIKED_SET"）
	Message string // 错误消息
	Module  string // 模块名称（如 "recommend", "catalog", "store"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误链中是否有 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，如果没有则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound           = "NOT_FOUND"            // 资源不存在
	ErrorCodeNotSupported       = "NOT_SUPPORTED"        // 操作不支持
	ErrorCodeUnavailable        = "UNAVAILABLE"          // 服务不可用
	ErrorCodeInvalidInput       = "INVALID_INPUT"        // 输入无效
	ErrorCodeInternalError      = "INTERNAL_ERROR"       // 内部错误
	ErrorCodeEmptyLikedSet      = "EMPTY_LIKED_SET"      // 没有可用于打分的 liked 游戏
	ErrorCodeEmptyCandidatePool = "EMPTY_CANDIDATE_POOL" // 候选池为空
	ErrorCodeMalformedGame      = "MALFORMED_GAME"       // 单个游戏的类目字段不可读
)

// 模块名称常量
const (
	ModuleStore     = "store"
	ModuleFeature   = "feature"
	ModuleRecommend = "recommend"
	ModuleCatalog   = "catalog"
)

var (
	// ErrEmptyLikedSet 表示 liked 列表为空，没有任何 liked 游戏出现在候选池中，
	// 或所有 liked 游戏的向量都为零（没有任何类目）
	ErrEmptyLikedSet = NewDomainError(ModuleRecommend, ErrorCodeEmptyLikedSet, "no liked games usable for scoring")

	// ErrEmptyCandidatePool 表示没有候选池输入。与"没有推荐结果"不同，后者是合法的空结果。
	ErrEmptyCandidatePool = NewDomainError(ModuleRecommend, ErrorCodeEmptyCandidatePool, "candidate pool is empty")

	// ErrMalformedGame 表示游戏的类目字段无法读取
	ErrMalformedGame = NewDomainError(ModuleFeature, ErrorCodeMalformedGame, "malformed game")

	// ErrCatalogUnavailable 表示上游目录服务不可用（熔断打开或重试耗尽）
	ErrCatalogUnavailable = NewDomainError(ModuleCatalog, ErrorCodeUnavailable, "catalog: upstream unavailable")
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsEmptyLikedSet 检查错误是否为 EMPTY_LIKED_SET
func IsEmptyLikedSet(err error) bool {
	return hasCode(err, ErrorCodeEmptyLikedSet)
}

// IsEmptyCandidatePool 检查错误是否为 EMPTY_CANDIDATE_POOL
func IsEmptyCandidatePool(err error) bool {
	return hasCode(err, ErrorCodeEmptyCandidatePool)
}

// IsMalformedGame 检查错误是否为 MALFORMED_GAME
func IsMalformedGame(err error) bool {
	return hasCode(err, ErrorCodeMalformedGame)
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}
