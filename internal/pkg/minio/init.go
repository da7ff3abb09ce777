package minio

import (
	"Beacon/internal/api/config"
	"context"
	"fmt"
	log "log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

var (
	// Client 全局 MinIO 客户端实例
	Client *minio.Client
	// ExportBucket 离线导出文件存储桶
	ExportBucket string
)

// Init 初始化 MinIO 客户端
func Init() error {
	cfg := config.Cfg.MinIO

	client, err := minio.New(cfg.InternalEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.InternalUseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize minio client: %w", err)
	}

	ctx := context.Background()
	_, err = client.ListBuckets(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to minio server: %w", err)
	}
	Client = client
	ExportBucket = cfg.ExportBucket

	expireDays := cfg.ExportExpireDays
	if expireDays <= 0 {
		expireDays = 30
	}
	return EnsureExportBucketLifecycle(ctx, expireDays)
}

// EnsureExportBucketLifecycle 给导出桶补全过期策略，历史导出文件到期自动清理
func EnsureExportBucketLifecycle(ctx context.Context, expireDays int) error {
	lcConfig, err := Client.GetBucketLifecycle(ctx, ExportBucket)
	if err != nil {
		lcConfig = lifecycle.NewConfiguration()
	}

	hasTargetRule := false
	for _, rule := range lcConfig.Rules {
		// 判定条件：状态开启 + 全桶匹配(无Prefix) + 过期天数一致
		if rule.Status == "Enabled" &&
			rule.Expiration.Days == lifecycle.ExpirationDays(expireDays) &&
			rule.RuleFilter.Prefix == "" {
			hasTargetRule = true
			log.Info("检测到已存在兼容的过期策略", "ruleID", rule.ID)
			break
		}
	}

	if !hasTargetRule {
		newRule := lifecycle.Rule{
			ID:     "ExportAutoDeleteRule",
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expireDays),
			},
		}
		lcConfig.Rules = append(lcConfig.Rules, newRule)

		err = Client.SetBucketLifecycle(ctx, ExportBucket, lcConfig)
		if err != nil {
			return fmt.Errorf("设置生命周期失败: %w", err)
		}
		log.Info("已自动补全导出桶的过期策略", "days", expireDays)
	}

	return nil
}
