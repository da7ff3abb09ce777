package wire

import (
	"Beacon/internal/api"
	"Beacon/internal/api/config"
	"Beacon/internal/api/handler"
	"Beacon/internal/job"
	"Beacon/internal/pkg/cron"
	"Beacon/internal/pkg/kafka"
	"Beacon/internal/pkg/mail"
	"Beacon/internal/repository"
	"Beacon/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router   *gin.Engine
	DB       *gorm.DB
	CronMgr  *cron.Manager
	Producer *kafka.Producer
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepo(db)
	userRolesRepo := repository.NewUserRolesRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)

	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, err
	}

	mailClient := mail.NewClient(cfg.Mail)
	mailService := service.NewMailService(mailClient)
	userService := service.NewUserService(userRepo, roleRepo, mailService)
	userRolesService := service.NewUserRolesService(userRolesRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	notificationAdminService := service.NewNotificationAdminService(notificationRepo, producer)

	handlers := &api.HandlersGroup{
		UserHandler:              handler.NewUserHandler(userService, userRolesService, mailService),
		NotificationHandler:      handler.NewNotificationHandler(notificationService),
		NotificationAdminHandler: handler.NewNotificationAdminHandler(notificationAdminService),
	}

	router := api.SetupRouter(handlers)

	userExportJob := job.NewUserExportJob(userRepo)
	cronMgr := cron.NewCronManager(userExportJob)

	return &ApplicationContainer{
		Router:   router,
		DB:       db,
		CronMgr:  cronMgr,
		Producer: producer,
	}, nil
}
