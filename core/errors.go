package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分级（传播策略见各模块）：
//   - INVALID_INPUT：同步返回给调用方
//   - UPSTREAM_UNAVAILABLE：内容/用户仓库不可达，对该次 GetFeed 是致命错误
//   - PREDICTOR_UNAVAILABLE：触发降级（base-score-only），只记日志不上抛
//   - STALE_DATA：画像/热点索引超过新鲜度阈值，只记日志不阻断
type DomainError struct {
	Code    string // 错误代码（如 "INVALID_INPUT", "UPSTREAM_UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "feed", "store", "predict"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound             = "NOT_FOUND"             // 资源不存在
	ErrorCodeNotSupported         = "NOT_SUPPORTED"         // 操作不支持
	ErrorCodeInvalidInput         = "INVALID_INPUT"         // 输入无效
	ErrorCodeUpstreamUnavailable  = "UPSTREAM_UNAVAILABLE"  // 上游（内容/用户仓库）不可达
	ErrorCodePredictorUnavailable = "PREDICTOR_UNAVAILABLE" // 预测器不可用（降级处理）
	ErrorCodeStaleData            = "STALE_DATA"            // 数据超过新鲜度阈值
	ErrorCodeInternalError        = "INTERNAL_ERROR"        // 内部错误
)

// 模块名称常量
const (
	ModuleStore    = "store"
	ModuleFeature  = "feature"
	ModulePredict  = "predict"
	ModuleFeed     = "feed"
	ModuleTrending = "trending"
	ModuleTraining = "training"
	ModuleIngest   = "ingest"
	ModuleProfile  = "profile"
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsUpstreamUnavailable 检查错误是否为 UPSTREAM_UNAVAILABLE
func IsUpstreamUnavailable(err error) bool { return hasCode(err, ErrorCodeUpstreamUnavailable) }

// IsPredictorUnavailable 检查错误是否为 PREDICTOR_UNAVAILABLE
func IsPredictorUnavailable(err error) bool { return hasCode(err, ErrorCodePredictorUnavailable) }

// IsStaleData 检查错误是否为 STALE_DATA
func IsStaleData(err error) bool { return hasCode(err, ErrorCodeStaleData) }
