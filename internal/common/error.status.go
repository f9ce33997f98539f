package common

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	StatusOK      = 200 // Thành công
	StatusCreated = 201 // Tạo mới thành công

	StatusBadRequest      = 400 // Yêu cầu không hợp lệ
	StatusUnauthorized    = 401 // Chưa xác thực
	StatusForbidden       = 403 // Không có quyền truy cập
	StatusNotFound        = 404 // Không tìm thấy tài nguyên
	StatusConflict        = 409 // Xung đột dữ liệu
	StatusTooManyRequests = 429 // Quá nhiều yêu cầu

	StatusInternalServerError = 500 // Lỗi server
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
)

// Response Messages
const (
	MsgSuccess = "Thao tác thành công"
	MsgCreated = "Tạo mới thành công"

	MsgBadRequest         = "Yêu cầu không hợp lệ"
	MsgUnauthorized       = "Vui lòng đăng nhập"
	MsgForbidden          = "Không có quyền truy cập"
	MsgNotFound           = "Không tìm thấy tài nguyên"
	MsgConflict           = "Xung đột dữ liệu"
	MsgTooManyRequests    = "Quá nhiều yêu cầu"
	MsgInternalError      = "Lỗi hệ thống"
	MsgServiceUnavailable = "Dịch vụ không khả dụng"

	MsgValidationError = "Validation failed"
	MsgDatabaseError   = "Lỗi tương tác với cơ sở dữ liệu"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: AUTH_001)
	Category    string // Phân loại lỗi (ví dụ: Authentication)
	SubCategory string // Phân loại con (ví dụ: Token)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{Code: "SYS_001", Category: "System", SubCategory: "Internal", Description: "Lỗi hệ thống nội bộ"}

	// Authentication Errors (AUTH_xxx)
	ErrCodeAuthToken       = ErrorCode{Code: "AUTH_001", Category: "Authentication", SubCategory: "Token", Description: "Lỗi liên quan đến token"}
	ErrCodeAuthCredentials = ErrorCode{Code: "AUTH_002", Category: "Authentication", SubCategory: "Credentials", Description: "Lỗi thông tin đăng nhập"}
	ErrCodeAuthRole        = ErrorCode{Code: "AUTH_003", Category: "Authentication", SubCategory: "Role", Description: "Lỗi liên quan đến vai trò người dùng"}
	ErrCodeAuthActor       = ErrorCode{Code: "AUTH_004", Category: "Authentication", SubCategory: "Actor", Description: "Thiếu thông tin người thực hiện thao tác"}

	// Validation Errors (VAL_xxx)
	ErrCodeValidationInput  = ErrorCode{Code: "VAL_001", Category: "Validation", SubCategory: "Input", Description: "Lỗi dữ liệu đầu vào"}
	ErrCodeValidationFormat = ErrorCode{Code: "VAL_002", Category: "Validation", SubCategory: "Format", Description: "Lỗi định dạng dữ liệu"}
	ErrCodeValidationField  = ErrorCode{Code: "VAL_003", Category: "Validation", SubCategory: "Field", Description: "Giá trị field cấu hình không hợp lệ"}

	// Database Errors (DB_xxx)
	ErrCodeDatabase           = ErrorCode{Code: "DB", Category: "Database", SubCategory: "General", Description: "Lỗi cơ sở dữ liệu chung"}
	ErrCodeDatabaseConnection = ErrorCode{Code: "DB_001", Category: "Database", SubCategory: "Connection", Description: "Lỗi kết nối cơ sở dữ liệu"}
	ErrCodeDatabaseQuery      = ErrorCode{Code: "DB_002", Category: "Database", SubCategory: "Query", Description: "Lỗi truy vấn dữ liệu"}
	ErrCodeDatabaseVersion    = ErrorCode{Code: "DB_003", Category: "Database", SubCategory: "Version", Description: "Document đã bị thay đổi bởi request khác"}

	// Business Logic Errors (BIZ_xxx)
	ErrCodeBusinessState     = ErrorCode{Code: "BIZ_001", Category: "Business", SubCategory: "State", Description: "Lỗi trạng thái nghiệp vụ"}
	ErrCodeBusinessOperation = ErrorCode{Code: "BIZ_002", Category: "Business", SubCategory: "Operation", Description: "Lỗi thao tác nghiệp vụ"}

	// Bot Config Errors (CFG_xxx)
	ErrCodeConfigNotFound = ErrorCode{Code: "CFG_001", Category: "BotConfig", SubCategory: "Lookup", Description: "Không tìm thấy cấu hình bot của merchant"}
	ErrCodeConfigFields   = ErrorCode{Code: "CFG_002", Category: "BotConfig", SubCategory: "Fields", Description: "Danh sách field trong request không hợp lệ"}
	ErrCodeConfigExists   = ErrorCode{Code: "CFG_003", Category: "BotConfig", SubCategory: "Create", Description: "Cấu hình bot của merchant đã tồn tại"}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is so sánh theo mã lỗi và message để errors.Is hoạt động với các bản sao WithDetails
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code.Code == t.Code.Code && e.Message == t.Message
}

// Unwrap trả về lỗi gốc nếu Details là error
func (e *Error) Unwrap() error {
	if cause, ok := e.Details.(error); ok {
		return cause
	}
	return nil
}

// WithDetails trả về bản sao của lỗi với Details mới, giữ nguyên mã và message
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

func newError(code ErrorCode, message string, statusCode int) *Error {
	return &Error{Code: code, Message: message, StatusCode: statusCode}
}

// Custom errors
var (
	// Authentication Errors
	ErrInvalidCredentials  = newError(ErrCodeAuthCredentials, "Invalid email or password", StatusUnauthorized)
	ErrTokenExpired        = newError(ErrCodeAuthToken, "Phiên đăng nhập đã hết hạn", StatusUnauthorized)
	ErrTokenInvalid        = newError(ErrCodeAuthToken, "Token không hợp lệ", StatusUnauthorized)
	ErrTokenMissing        = newError(ErrCodeAuthToken, "Thiếu token xác thực", StatusUnauthorized)
	ErrAuthRequired        = newError(ErrCodeAuthActor, "Authentication required - user details not found in token", StatusUnauthorized)
	ErrAccountInactive     = newError(ErrCodeAuthCredentials, "Account is not active", StatusForbidden)
	ErrUnknownRole         = newError(ErrCodeAuthRole, "Unknown role", StatusForbidden)
	ErrUserNotFound        = newError(ErrCodeAuthCredentials, "Không tìm thấy thông tin người dùng", StatusNotFound)
	ErrUserExists          = newError(ErrCodeDatabaseQuery, "User with this email already exists", StatusConflict)
	ErrVerifyTokenInvalid  = newError(ErrCodeAuthToken, "Invalid or expired token", StatusBadRequest)
	ErrVerifyTokenExpired  = newError(ErrCodeAuthToken, "Verification token expired", StatusBadRequest)
	ErrVerifyTokenUsed     = newError(ErrCodeAuthToken, "User already verified or token already used", StatusBadRequest)
	ErrVerifyTokenMismatch = newError(ErrCodeAuthToken, "Invalid verification token", StatusBadRequest)

	// Validation Errors
	ErrInvalidInput     = newError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest)
	ErrInvalidFormat    = newError(ErrCodeValidationFormat, "Định dạng dữ liệu không hợp lệ", StatusBadRequest)
	ErrRequiredField    = newError(ErrCodeValidationInput, "Thiếu thông tin bắt buộc", StatusBadRequest)
	ErrFieldValidation  = newError(ErrCodeValidationField, MsgValidationError, StatusBadRequest)
	ErrNoFieldsProvided = newError(ErrCodeConfigFields, "No fields provided for update", StatusBadRequest)

	// Bot config Errors
	ErrConfigNotFound  = newError(ErrCodeConfigNotFound, "Configuration not found for this merchant", StatusNotFound)
	ErrConfigExists    = newError(ErrCodeConfigExists, "Configuration already exists for this merchant", StatusConflict)
	ErrNoValidFields   = newError(ErrCodeConfigFields, "No valid fields found to update", StatusBadRequest)
	ErrEmptyFieldList  = newError(ErrCodeConfigFields, "Please provide at least one field to reset", StatusBadRequest)
	ErrVersionConflict = newError(ErrCodeDatabaseVersion, "Configuration was modified concurrently, please retry", StatusConflict)

	// Database Errors
	ErrNotFound     = newError(ErrCodeDatabaseQuery, "Không tìm thấy dữ liệu", StatusNotFound)
	ErrDuplicate    = newError(ErrCodeDatabaseQuery, "Dữ liệu đã tồn tại", StatusConflict)
	ErrConnection   = newError(ErrCodeDatabaseConnection, "Lỗi kết nối cơ sở dữ liệu", StatusServiceUnavailable)
	ErrMongoTimeout = newError(ErrCodeDatabaseConnection, "Kết nối MongoDB bị timeout", StatusServiceUnavailable)

	// Business Logic Errors
	ErrInvalidState     = newError(ErrCodeBusinessState, "Trạng thái không hợp lệ", StatusBadRequest)
	ErrInvalidOperation = newError(ErrCodeBusinessOperation, "Thao tác không hợp lệ", StatusBadRequest)
)

// ConvertMongoError chuyển đổi lỗi MongoDB sang lỗi hệ thống
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// Lỗi đã được chuẩn hóa thì giữ nguyên
	var customErr *Error
	if errors.As(err, &customErr) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if mongo.IsTimeout(err) {
		return ErrMongoTimeout
	}
	if mongo.IsNetworkError(err) {
		return ErrConnection
	}

	return NewError(ErrCodeDatabase, MsgDatabaseError, StatusInternalServerError, err)
}

// StatusOf trả về HTTP status code của lỗi, mặc định 500
func StatusOf(err error) int {
	var customErr *Error
	if errors.As(err, &customErr) {
		return customErr.StatusCode
	}
	return StatusInternalServerError
}
