package botconfigdto

// ResetFieldsInput đầu vào reset một số field về giá trị gốc
type ResetFieldsInput struct {
	Fields []string `json:"fields"`
}

// CreateConfigInput đầu vào tạo cấu hình mới từ template
type CreateConfigInput struct {
	Description string `json:"description" validate:"omitempty,max=500,no_xss"`
}

// ListConfigQuery tham số phân trang và tìm kiếm theo merchant id
type ListConfigQuery struct {
	Page   int64  `query:"page"`
	Limit  int64  `query:"limit" validate:"omitempty,max=100"`
	Search string `query:"search" validate:"omitempty,max=100"`
}

// UpdateResult kết quả cập nhật cấu hình rút gọn
type UpdateResult struct {
	UpdatesApplied int            `json:"updates_applied"`
	MerchantID     string         `json:"merchant_id"`
	Config         map[string]any `json:"config"`
}

// ResetResult kết quả reset field
type ResetResult struct {
	FieldsReset int            `json:"fields_reset"`
	MerchantID  string         `json:"merchant_id"`
	Config      map[string]any `json:"config"`
}

// DeleteResult kết quả xóa cấu hình
type DeleteResult struct {
	MerchantID string `json:"merchant_id"`
}
