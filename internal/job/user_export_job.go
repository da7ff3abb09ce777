package job

import (
	"Beacon/internal/pkg/consts"
	"Beacon/internal/pkg/logger"
	"Beacon/internal/pkg/minio"
	"Beacon/internal/pkg/redis"
	"Beacon/internal/repository"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	log "log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const exportBatchSize = 500

// UserExportJob 每日把用户全量快照导出为 CSV 并归档到对象存储
type UserExportJob struct {
	userRepo repository.UserRepo
}

func NewUserExportJob(userRepo repository.UserRepo) *UserExportJob {
	return &UserExportJob{userRepo: userRepo}
}

func (s *UserExportJob) Run() {
	traceID := "job-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	// 多实例部署时只允许一个实例执行导出
	lockValue := uuid.NewString()
	lock, err := redis.TryLock(ctx, consts.UserExportLock, lockValue, time.Minute*10, 1)
	if err != nil {
		log.ErrorContext(ctx, "acquire export lock error", "err", err)
		return
	}
	if !lock {
		log.InfoContext(ctx, "export lock held by another instance, skip")
		return
	}
	defer redis.UnLock(ctx, consts.UserExportLock, lockValue)

	objectName, count, err := s.export(ctx)
	if err != nil {
		log.ErrorContext(ctx, "export users error", "err", err)
		return
	}
	log.InfoContext(ctx, "export users success", "object", objectName, "count", count)
}

func (s *UserExportJob) export(ctx context.Context) (string, int, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"id", "username", "email", "nickname", "region", "email_verified", "is_ban", "created_at"}
	if err := writer.Write(header); err != nil {
		return "", 0, err
	}

	count := 0
	var afterID uint64
	for {
		users, err := s.userRepo.ListUsersForExport(ctx, afterID, exportBatchSize)
		if err != nil {
			return "", 0, err
		}
		if len(users) == 0 {
			break
		}
		for _, user := range users {
			record := []string{
				strconv.FormatUint(user.ID, 10),
				strValue(user.Username),
				strValue(user.Email),
				user.UserDetail.Nickname,
				strValue(user.UserDetail.Region),
				strconv.FormatBool(user.EmailVerifiedAt != nil),
				strconv.FormatBool(user.IsBan),
				user.CreatedAt.UTC().Format(time.RFC3339),
			}
			if err = writer.Write(record); err != nil {
				return "", 0, err
			}
			count++
		}
		afterID = users[len(users)-1].ID
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", 0, err
	}

	objectName := fmt.Sprintf("users/%s.csv", time.Now().Format(time.DateOnly))
	_, err := minio.UploadFile(ctx, objectName, &buf, int64(buf.Len()), "text/csv")
	if err != nil {
		return "", 0, err
	}
	return objectName, count, nil
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
