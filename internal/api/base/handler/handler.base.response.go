package basehdl

import (
	"fmt"
	"runtime/debug"

	"bot_admin/internal/api/middleware"
	"bot_admin/internal/common"
	"bot_admin/internal/global"
	"bot_admin/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	return middleware.JSONResponse(c, statusCode, data)
}

// SafeHandler bọc handler với recover để luôn trả về response cho client, kể cả khi panic.
func SafeHandler(c fiber.Ctx, handler func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithRequest(c).WithField("panic", r).WithField("stack", string(debug.Stack())).Error("Handler panic")
			err = middleware.HandleErrorResponse(c, common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Lỗi hệ thống không mong muốn: %v", r),
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return handler()
}

// HandleResponse chuẩn hóa response: lỗi qua middleware.HandleErrorResponse,
// thành công trả {success:true, code, message, data, status:"success"}.
func HandleResponse(c fiber.Ctx, statusCode int, message string, data interface{}, err error) error {
	if err != nil {
		return middleware.HandleErrorResponse(c, err)
	}
	if message == "" {
		message = common.MsgSuccess
	}
	return JSONResponse(c, statusCode, fiber.Map{
		"success": true,
		"code":    statusCode,
		"message": message,
		"data":    data,
		"status":  "success",
	})
}

// ParseRequestBody parse body JSON vào input
func ParseRequestBody(c fiber.Ctx, input interface{}) error {
	if len(c.Body()) == 0 {
		return common.ErrInvalidFormat.WithDetails("request body is empty")
	}
	if err := c.Bind().Body(input); err != nil {
		return common.ErrInvalidFormat.WithDetails(err.Error())
	}
	return nil
}

// ValidateInput kiểm tra struct theo tag `validate`, trả lỗi kèm danh sách field sai
func ValidateInput(input interface{}) error {
	err := global.GetValidator().Struct(input)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return common.ErrInvalidInput.WithDetails(err.Error())
	}
	details := make([]fiber.Map, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fiber.Map{
			"field":   fe.Field(),
			"message": fmt.Sprintf("failed on '%s' rule", fe.Tag()),
		})
	}
	return common.ErrInvalidInput.WithDetails(details)
}
