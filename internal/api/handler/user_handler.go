package handler

import (
	"Beacon/internal/api/dto"
	"Beacon/internal/pkg/minio"
	"Beacon/internal/pkg/response"
	"Beacon/internal/pkg/util"
	"Beacon/internal/service"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userSvc      service.UserService
	userRolesSvc service.UserRolesService
	mailSvc      service.MailService
}

func NewUserHandler(userSvc service.UserService, userRolesSvc service.UserRolesService, mailSvc service.MailService) *UserHandler {
	return &UserHandler{
		userSvc:      userSvc,
		userRolesSvc: userRolesSvc,
		mailSvc:      mailSvc,
	}
}

func (s *UserHandler) Register(c *gin.Context) {
	var registerDTO dto.RegisterDTO
	err := c.ShouldBind(&registerDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = util.ValidateDTO(&registerDTO); err != nil {
		response.Error(c, err)
		return
	}
	err = s.userSvc.Register(c.Request.Context(), &registerDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) SendEmailCode(c *gin.Context) {
	var req dto.SendEmailCodeDTO
	err := c.ShouldBind(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}
	err = s.mailSvc.SendEmailCode(c.Request.Context(), *req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) Login(c *gin.Context) {
	var loginDTO dto.CredentialDTO
	err := c.ShouldBind(&loginDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !util.ValidateLoginDTO(&loginDTO) {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	token, err := s.userSvc.Login(c.Request.Context(), &loginDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]string{
		"token": token,
	})
}

func (s *UserHandler) Logout(c *gin.Context) {
	token := c.Request.Header.Get("Authorization")
	token = strings.Replace(token, "Bearer ", "", 1)
	err := s.userSvc.Logout(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) GetUserInfo(c *gin.Context) {
	userID := c.GetUint64("user_id")
	userDTO, err := s.userSvc.GetUserInfo(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, userDTO)
}

func (s *UserHandler) UpdateUserInfo(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var userDTO dto.UserDTO
	err := c.ShouldBind(&userDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = util.ValidateDTO(&userDTO); err != nil {
		response.Error(c, err)
		return
	}
	err = s.userSvc.UpdateUserInfo(c.Request.Context(), userID, &userDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) ChangePassword(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var changePasswordDTO dto.ChangePasswordDTO
	err := c.ShouldBind(&changePasswordDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	err = util.ValidateDTO(&changePasswordDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	err = s.userSvc.UpdatePasswordFromOld(c.Request.Context(), userID, &changePasswordDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) ForgetPassword(c *gin.Context) {
	var forgetPasswordDTO dto.ForgetPasswordDTO
	err := c.ShouldBind(&forgetPasswordDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	err = util.ValidateDTO(&forgetPasswordDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	err = s.userSvc.UpdatePasswordFromCode(c.Request.Context(), &forgetPasswordDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) VerifyEmail(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var verifyDTO dto.VerifyEmailDTO
	err := c.ShouldBind(&verifyDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	err = util.ValidateDTO(&verifyDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	err = s.userSvc.VerifyEmail(c.Request.Context(), userID, &verifyDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) CancelUser(c *gin.Context) {
	userID := c.GetUint64("user_id")
	err := s.userSvc.CancelUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) BanUser(c *gin.Context) {
	operatorID := c.GetUint64("user_id")
	var banDTO dto.BanUserDTO
	err := c.ShouldBind(&banDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	err = s.userSvc.BanUser(c.Request.Context(), operatorID, banDTO.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) UnbanUser(c *gin.Context) {
	var banDTO dto.BanUserDTO
	err := c.ShouldBind(&banDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	err = s.userSvc.UnBanUser(c.Request.Context(), banDTO.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) GetUserByCondition(c *gin.Context) {
	var conditionDTO dto.GetUserByConditionDTO
	err := c.ShouldBindQuery(&conditionDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	if conditionDTO.ID == nil && conditionDTO.Email == nil && conditionDTO.Username == nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	user, err := s.userSvc.GetUserByCondition(c.Request.Context(), &conditionDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// GetUserExport 返回指定日期（默认当天）用户导出文件的限时下载链接
func (s *UserHandler) GetUserExport(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format(time.DateOnly))
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	objectName := fmt.Sprintf("users/%s.csv", date)
	url, err := minio.PresignedDownloadURL(c.Request.Context(), objectName, 15*time.Minute)
	if err != nil {
		response.Error(c, service.UnExpectedError)
		return
	}
	response.Success(c, map[string]string{
		"url": url,
	})
}

func (s *UserHandler) GetAllRoles(c *gin.Context) {
	roles, err := s.userRolesSvc.GetRoles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, roles)
}

func (s *UserHandler) AddUserRole(c *gin.Context) {
	var userRole dto.UserRoleDTO
	err := c.ShouldBind(&userRole)
	if err != nil {
		response.Error(c, err)
		return
	}
	err = s.userRolesSvc.AddRoleToUser(c.Request.Context(), userRole.UserID, userRole.RoleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) DeleteUserRole(c *gin.Context) {
	var userRole dto.UserRoleDTO
	err := c.ShouldBind(&userRole)
	if err != nil {
		response.Error(c, err)
		return
	}
	err = s.userRolesSvc.DeleteRoleFromUser(c.Request.Context(), userRole.UserID, userRole.RoleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
