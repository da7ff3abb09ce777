package service

import (
	"Beacon/internal/pkg/consts"
	"Beacon/internal/pkg/redis"
	"Beacon/internal/pkg/util"
	"context"
	"fmt"
	log "log/slog"
	"time"
)

// MailSender 邮件出口，便于在测试中替换
type MailSender interface {
	SendMail(ctx context.Context, to string, subject string, html string) error
}

type MailService interface {
	SendEmailCode(ctx context.Context, email string) error
	CheckCode(ctx context.Context, email string, code string) error
}

type MailServiceImpl struct {
	sender MailSender
}

func NewMailService(sender MailSender) MailService {
	return &MailServiceImpl{sender: sender}
}

// SendEmailCode 生成验证码并投递，验证码短期有效
func (s *MailServiceImpl) SendEmailCode(ctx context.Context, email string) error {
	code := util.GenerateCode(consts.EmailCodeLength)
	err := redis.SetWithExpiration(ctx, consts.EmailCodeKey+email, code, consts.EmailCodeTTLMinutes*time.Minute)
	if err != nil {
		return err
	}

	html := fmt.Sprintf("<p>您的验证码为 <strong>%s</strong>，%d 分钟内有效。</p>", code, consts.EmailCodeTTLMinutes)
	err = s.sender.SendMail(ctx, email, "【Beacon】邮箱验证码", html)
	if err != nil {
		log.WarnContext(ctx, "failed to send email code", "email", email, "err", err)
		return err
	}
	return nil
}

// CheckCode 校验验证码，命中后立即失效避免重放
func (s *MailServiceImpl) CheckCode(ctx context.Context, email string, code string) error {
	redisCode, err := redis.GetValue(ctx, consts.EmailCodeKey+email)
	if err != nil {
		return ErrCodeIncorrect
	}
	if redisCode == "" || redisCode != code {
		return ErrCodeIncorrect
	}
	_ = redis.DeleteKey(ctx, consts.EmailCodeKey+email)
	return nil
}
