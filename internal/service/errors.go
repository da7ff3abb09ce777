package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid            = errors.New("参数错误")
	ErrUserNotFound            = errors.New("用户不存在")
	ErrUserBan                 = errors.New("用户已被封禁")
	ErrUserBanSelf             = errors.New("不能封禁自己")
	ErrUserBanAdmin            = errors.New("不能封禁管理员")
	ErrUserUsernameExist       = errors.New("用户名已存在")
	ErrUserEmailExist          = errors.New("邮箱已注册")
	ErrUserEmailNotFound       = errors.New("邮箱未注册")
	ErrPasswordIncorrect       = errors.New("密码错误")
	ErrCodeIncorrect           = errors.New("验证码错误")
	ErrMissingLoginCredentials = errors.New("缺少登录凭据")
	ErrUserHasRole             = errors.New("用户已拥有此角色")
	ErrNotificationNotFound    = errors.New("通知不存在")
	ErrRecipientRequired       = errors.New("指定接收人不能为空")
	ErrRecipientInvalid        = errors.New("接收人中存在无效用户")
	ErrRecipientNotAllowed     = errors.New("全员通知不能指定接收人")
	UnauthorizedError          = errors.New("权限不足")
	UnExpectedError            = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:            BadRequest,
	ErrUserNotFound:            NotFound,
	ErrUserBan:                 Unauthorized,
	ErrUserBanSelf:             Unauthorized,
	ErrUserBanAdmin:            Unauthorized,
	ErrUserUsernameExist:       BadRequest,
	ErrUserEmailExist:          BadRequest,
	ErrUserEmailNotFound:       NotFound,
	ErrPasswordIncorrect:       Unauthorized,
	ErrCodeIncorrect:           Unauthorized,
	ErrMissingLoginCredentials: Unauthorized,
	ErrUserHasRole:             BadRequest,
	ErrNotificationNotFound:    NotFound,
	ErrRecipientRequired:       BadRequest,
	ErrRecipientInvalid:        BadRequest,
	ErrRecipientNotAllowed:     BadRequest,
	UnauthorizedError:          Unauthorized,
	UnExpectedError:            InternalServerError,
}
