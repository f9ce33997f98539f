package middleware

import (
	"errors"

	"bot_admin/internal/common"
	"bot_admin/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// ErrorBody chuyển error thành status code và body chuẩn
// {success:false, code, message, status:"error", errors?|details?}.
// Lỗi không thuộc common.Error được ẩn sau thông báo chung.
func ErrorBody(err error) (int, fiber.Map) {
	var customErr *common.Error
	if !errors.As(err, &customErr) {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return fiberErr.Code, fiber.Map{
				"success": false,
				"code":    codeForStatus(fiberErr.Code),
				"message": fiberErr.Message,
				"status":  "error",
			}
		}
		return common.StatusInternalServerError, fiber.Map{
			"success": false,
			"code":    common.ErrCodeInternalServer.Code,
			"message": "Internal server error",
			"status":  "error",
		}
	}

	body := fiber.Map{
		"success": false,
		"code":    customErr.Code.Code,
		"message": customErr.Message,
		"status":  "error",
	}
	switch details := customErr.Details.(type) {
	case nil, error:
		// nguyên nhân nội bộ không trả về client
	default:
		if customErr.Code == common.ErrCodeValidationField || customErr.Code == common.ErrCodeValidationInput {
			body["errors"] = details
		} else {
			body["details"] = details
		}
	}
	return customErr.StatusCode, body
}

// HandleErrorResponse ghi log và trả về error response cho client
func HandleErrorResponse(c fiber.Ctx, err error) error {
	status, body := ErrorBody(err)
	entry := logger.WithRequest(c).WithError(err).WithField("status", status)
	if status >= common.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}
	return JSONResponse(c, status, body)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return common.ErrCodeValidationInput.Code
	case fiber.StatusUnauthorized:
		return common.ErrCodeAuthToken.Code
	case fiber.StatusForbidden:
		return common.ErrCodeAuthRole.Code
	case fiber.StatusNotFound, fiber.StatusConflict:
		return common.ErrCodeDatabaseQuery.Code
	case fiber.StatusTooManyRequests:
		return common.ErrCodeBusinessOperation.Code
	}
	return common.ErrCodeInternalServer.Code
}
