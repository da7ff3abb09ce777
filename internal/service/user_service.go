package service

import (
	"Beacon/internal/api/dto"
	"Beacon/internal/model"
	"Beacon/internal/pkg/consts"
	"Beacon/internal/pkg/redis"
	"Beacon/internal/pkg/security"
	"Beacon/internal/repository"
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

const AdminRoleName = "admin"

type UserService interface {
	Register(ctx context.Context, dto *dto.RegisterDTO) error
	Login(ctx context.Context, dto *dto.CredentialDTO) (string, error)
	Logout(ctx context.Context, token string) error
	GetUserInfo(ctx context.Context, id uint64) (*dto.UserDTO, error)
	GetUserByCondition(ctx context.Context, dto *dto.GetUserByConditionDTO) (*dto.UserDTO, error)
	UpdateUserInfo(ctx context.Context, id uint64, dto *dto.UserDTO) error
	UpdatePasswordFromCode(ctx context.Context, dto *dto.ForgetPasswordDTO) error
	UpdatePasswordFromOld(ctx context.Context, id uint64, dto *dto.ChangePasswordDTO) error
	VerifyEmail(ctx context.Context, id uint64, dto *dto.VerifyEmailDTO) error
	BanUser(ctx context.Context, operatorID uint64, id uint64) error
	UnBanUser(ctx context.Context, id uint64) error
	CancelUser(ctx context.Context, id uint64) error
}

type UserServiceImpl struct {
	userRepo    repository.UserRepo
	roleRepo    repository.RoleRepo
	mailService MailService
}

func NewUserService(userRepo repository.UserRepo, roleRepo repository.RoleRepo, mailService MailService) UserService {
	return &UserServiceImpl{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		mailService: mailService,
	}
}

// Register 用户名加邮箱注册，邮箱验证在注册后另行完成
func (s *UserServiceImpl) Register(ctx context.Context, regDTO *dto.RegisterDTO) error {
	findUser, err := s.userRepo.GetUserByUsername(ctx, *regDTO.Username)
	if err != nil {
		return err
	}
	if findUser != nil {
		return ErrUserUsernameExist
	}
	findUser, err = s.userRepo.GetUserByEmail(ctx, *regDTO.Email)
	if err != nil {
		return err
	}
	if findUser != nil {
		return ErrUserEmailExist
	}

	user := &model.User{}
	err = copier.Copy(user, &regDTO)
	if err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(*regDTO.Password)
	if err != nil {
		return err
	}
	user.Password = &passwordHash

	detail := &model.UserDetail{}
	err = copier.Copy(detail, &regDTO)
	if err != nil {
		return err
	}

	role := model.UserRole{
		UserID: user.ID,
		RoleID: 1,
	}
	roles := []*model.UserRole{&role}

	err = s.userRepo.CreateUser(ctx, user, detail, &roles)
	if err != nil {
		// 并发注册时预检查可能漏判，唯一索引兜底
		if errors.Is(err, repository.ErrDuplicateKey) {
			return ErrUserUsernameExist
		}
		return err
	}

	return nil
}

func (s *UserServiceImpl) Login(ctx context.Context, dto *dto.CredentialDTO) (string, error) {
	user, err := s.findUserByLoginCredentials(ctx, dto)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if user.IsBan {
		return "", ErrUserBan
	}
	if dto.Password == nil || user.Password == nil {
		return "", ErrPasswordIncorrect
	}
	err = security.CheckPasswordHash(*dto.Password, *user.Password)
	if err != nil {
		return "", ErrPasswordIncorrect
	}
	roleNames, err := s.getRoleNamesForUser(ctx, user)
	if err != nil {
		return "", err
	}
	token, err := security.GenerateToken(user.ID, roleNames)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Logout 把 token 签名挂入黑名单，有效期覆盖 token 剩余寿命
func (s *UserServiceImpl) Logout(ctx context.Context, token string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return err
	}
	return redis.SetWithExpiration(ctx, consts.TokenBlacklistKey+signature, true, time.Hour*24)
}

func (s *UserServiceImpl) GetUserInfo(ctx context.Context, id uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toUserDTO(user), nil
}

func (s *UserServiceImpl) GetUserByCondition(ctx context.Context, condition *dto.GetUserByConditionDTO) (*dto.UserDTO, error) {
	var user *model.User
	var err error
	switch {
	case condition.ID != nil:
		user, err = s.userRepo.GetUserById(ctx, *condition.ID)
	case condition.Username != nil:
		user, err = s.userRepo.GetUserByUsername(ctx, *condition.Username)
	case condition.Email != nil:
		user, err = s.userRepo.GetUserByEmail(ctx, *condition.Email)
	default:
		return nil, ErrParamInvalid
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toUserDTO(user), nil
}

func (s *UserServiceImpl) UpdateUserInfo(ctx context.Context, id uint64, userDTO *dto.UserDTO) error {
	newUUID, err := uuid.NewUUID()
	if err != nil {
		return err
	}
	lockKey := consts.UserDetailLock + strconv.FormatUint(id, 10)
	lock, err := redis.TryLock(ctx, lockKey, newUUID.String(), time.Second*5, 3)
	if err != nil {
		return err
	}
	if !lock {
		return UnExpectedError
	}
	defer redis.UnLock(ctx, lockKey, newUUID.String())

	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	err = copier.CopyWithOption(&user.UserDetail, userDTO, copier.Option{IgnoreEmpty: true})
	if err != nil {
		return err
	}
	return s.userRepo.UpdateUserDetail(ctx, &user.UserDetail)
}

// UpdatePasswordFromCode 邮箱验证码重置密码
func (s *UserServiceImpl) UpdatePasswordFromCode(ctx context.Context, forgetDTO *dto.ForgetPasswordDTO) error {
	user, err := s.userRepo.GetUserByEmail(ctx, *forgetDTO.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserEmailNotFound
	}
	err = s.mailService.CheckCode(ctx, *forgetDTO.Email, *forgetDTO.Code)
	if err != nil {
		return err
	}
	passwordHash, err := security.HashPassword(*forgetDTO.NewPassword)
	if err != nil {
		return err
	}
	user.Password = &passwordHash
	return s.userRepo.UpdateUser(ctx, user)
}

func (s *UserServiceImpl) UpdatePasswordFromOld(ctx context.Context, id uint64, changeDTO *dto.ChangePasswordDTO) error {
	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.Password == nil {
		return ErrPasswordIncorrect
	}
	err = security.CheckPasswordHash(*changeDTO.OldPassword, *user.Password)
	if err != nil {
		return ErrPasswordIncorrect
	}
	passwordHash, err := security.HashPassword(*changeDTO.NewPassword)
	if err != nil {
		return err
	}
	user.Password = &passwordHash
	return s.userRepo.UpdateUser(ctx, user)
}

// VerifyEmail 校验验证码并落地邮箱已验证标记，幂等
func (s *UserServiceImpl) VerifyEmail(ctx context.Context, id uint64, verifyDTO *dto.VerifyEmailDTO) error {
	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.Email == nil || *user.Email != *verifyDTO.Email {
		return ErrUserEmailNotFound
	}
	if user.EmailVerifiedAt != nil {
		return nil
	}
	err = s.mailService.CheckCode(ctx, *verifyDTO.Email, *verifyDTO.Code)
	if err != nil {
		return err
	}
	now := time.Now()
	user.EmailVerifiedAt = &now
	return s.userRepo.UpdateUser(ctx, user)
}

func (s *UserServiceImpl) BanUser(ctx context.Context, operatorID uint64, id uint64) error {
	if operatorID == id {
		return ErrUserBanSelf
	}
	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	roleNames, err := s.getRoleNamesForUser(ctx, user)
	if err != nil {
		return err
	}
	for _, name := range roleNames {
		if name == AdminRoleName {
			return ErrUserBanAdmin
		}
	}
	_, err = s.userRepo.UpdateUserIsBan(ctx, id, true)
	return err
}

func (s *UserServiceImpl) UnBanUser(ctx context.Context, id uint64) error {
	affected, err := s.userRepo.UpdateUserIsBan(ctx, id, false)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserServiceImpl) CancelUser(ctx context.Context, id uint64) error {
	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.userRepo.DeleteUser(ctx, id)
}

func (s *UserServiceImpl) findUserByLoginCredentials(ctx context.Context, dto *dto.CredentialDTO) (*model.User, error) {
	if dto.Username != nil && *dto.Username != "" {
		return s.userRepo.GetUserByUsername(ctx, *dto.Username)
	}
	if dto.Email != nil && *dto.Email != "" {
		return s.userRepo.GetUserByEmail(ctx, *dto.Email)
	}
	return nil, ErrMissingLoginCredentials
}

func (s *UserServiceImpl) getRoleNamesForUser(ctx context.Context, user *model.User) ([]string, error) {
	if len(user.UserRoles) == 0 {
		return []string{}, nil
	}
	roleIDs := make([]uint64, 0, len(user.UserRoles))
	for _, role := range user.UserRoles {
		roleIDs = append(roleIDs, role.RoleID)
	}
	roles, err := s.roleRepo.GetRoleByIDs(ctx, roleIDs)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		return nil, UnExpectedError
	}
	roleNames := make([]string, 0, len(*roles))
	for _, role := range *roles {
		roleNames = append(roleNames, role.Name)
	}
	return roleNames, nil
}

func toUserDTO(user *model.User) *dto.UserDTO {
	userDTO := &dto.UserDTO{}
	_ = copier.Copy(userDTO, user)
	_ = copier.Copy(userDTO, user.UserDetail)
	userDTO.UserID = &user.ID
	verified := user.EmailVerifiedAt != nil
	userDTO.EmailVerified = &verified
	return userDTO
}
