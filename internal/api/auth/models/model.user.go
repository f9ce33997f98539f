// Package models - model người dùng (User) thuộc domain auth.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái tài khoản
const (
	UserStatusActive      = "active"
	UserStatusSuspended   = "suspended"
	UserStatusDeactivated = "deactivated"
	UserStatusNotVerified = "not_verified"
)

// UserStatuses liệt kê các trạng thái hợp lệ
var UserStatuses = []string{UserStatusActive, UserStatusSuspended, UserStatusDeactivated, UserStatusNotVerified}

// User định nghĩa tài khoản quản trị.
// Password và VerificationToken không bao giờ trả ra JSON.
type User struct {
	ID                      primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	FirstName               string              `json:"firstName" bson:"firstName"`
	LastName                string              `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Email                   string              `json:"email" bson:"email" index:"unique"`
	Password                string              `json:"-" bson:"password,omitempty"`
	Role                    string              `json:"role" bson:"role" index:"single"`
	Status                  string              `json:"status" bson:"status" index:"compound:tenant_status_idx"`
	TenantID                string              `json:"tenant_id,omitempty" bson:"tenant_id,omitempty" index:"compound:tenant_status_idx"`
	IsSuperAdmin            bool                `json:"is_super_admin" bson:"is_super_admin"`
	IsSystemUser            bool                `json:"is_system_user" bson:"is_system_user"`
	IsVerified              bool                `json:"isVerified" bson:"isVerified"`
	IsDefaultPassword       bool                `json:"isDefaultPassword" bson:"isDefaultPassword"`
	VerificationToken       string              `json:"-" bson:"verificationToken,omitempty"`
	VerificationTokenExpiry *time.Time          `json:"-" bson:"verificationTokenExpiry,omitempty"`
	LastLogin               *time.Time          `json:"last_login,omitempty" bson:"last_login,omitempty"`
	FailedAttempts          int                 `json:"failed_attempts" bson:"failed_attempts"`
	LastFailedLogin         *time.Time          `json:"last_failed_login,omitempty" bson:"last_failed_login,omitempty"`
	PasswordLastChanged     *time.Time          `json:"password_last_changed,omitempty" bson:"password_last_changed,omitempty"`
	Permissions             map[string][]string `json:"permissions" bson:"permissions"`
	CreatedBy               string              `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt               time.Time           `json:"createdAt" bson:"createdAt" index:"single,order:-1"`
	UpdatedAt               time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// FullName ghép họ tên để ghi vào audit
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
