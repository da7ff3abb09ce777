package dto

import "time"

// UserDTO 用户
type UserDTO struct {
	UserID        *uint64    `json:"user_id,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Nickname      *string    `json:"nickname,omitempty"`
	AvatarURL     *string    `json:"avatar_url,omitempty"`
	Bio           *string    `json:"bio,omitempty" validate:"omitempty,max=200"`
	Region        *string    `json:"region,omitempty"`
	EmailVerified *bool      `json:"email_verified,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// GetUserByConditionDTO 管理端按条件搜索用户
type GetUserByConditionDTO struct {
	ID       *uint64 `form:"id" json:"id,omitempty"`
	Email    *string `form:"email" json:"email,omitempty"`
	Username *string `form:"username" json:"username,omitempty"`
}

// RegisterDTO 注册
type RegisterDTO struct {
	Username *string `json:"username" binding:"required" validate:"required,min=6,max=20"`
	Password *string `json:"password" binding:"required" validate:"required,min=6,max=20"`
	Email    *string `json:"email" binding:"required" validate:"required,email"`

	Nickname string  `json:"nickname" validate:"required,min=1,max=15"`
	Bio      *string `json:"bio"`
	Region   *string `json:"region"`
}

// ForgetPasswordDTO 忘记密码（邮箱验证码重置）
type ForgetPasswordDTO struct {
	Email       *string `json:"email" binding:"required" validate:"required,email"`
	Code        *string `json:"code" binding:"required" validate:"min=6,max=6"`
	NewPassword *string `json:"new_password" binding:"required" validate:"min=6,max=20"`
}

// CredentialDTO 登录凭证，用户名或邮箱二选一
type CredentialDTO struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// SendEmailCodeDTO 发送邮箱验证码
type SendEmailCodeDTO struct {
	Email *string `json:"email" binding:"required" validate:"required,email"`
}

// VerifyEmailDTO 校验邮箱验证码完成验证
type VerifyEmailDTO struct {
	Email *string `json:"email" binding:"required" validate:"required,email"`
	Code  *string `json:"code" binding:"required" validate:"min=6,max=6"`
}

// ChangePasswordDTO 修改密码
type ChangePasswordDTO struct {
	OldPassword *string `json:"old_password" binding:"required" validate:"min=6,max=20"`
	NewPassword *string `json:"new_password" binding:"required" validate:"min=6,max=20"`
}

// UserRoleDTO 角色授予/回收
type UserRoleDTO struct {
	UserID uint64 `json:"user_id" binding:"required"`
	RoleID uint64 `json:"role_id" binding:"required"`
}

// BanUserDTO 封禁/解封
type BanUserDTO struct {
	UserID uint64 `json:"user_id" binding:"required"`
}
