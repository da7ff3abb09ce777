package mail

import (
	"Beacon/internal/api/config"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client 邮件投递服务的 HTTP 客户端
type Client struct {
	http *resty.Client
	from string
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html"`
}

func NewClient(cfg config.MailConfig) *Client {
	http := resty.New().
		SetBaseURL(cfg.URL).
		SetAuthToken(cfg.ApiKey).
		SetTimeout(10 * time.Second).
		SetRetryCount(2)

	return &Client{
		http: http,
		from: cfg.From,
	}
}

// SendMail 调用投递服务发送单封邮件
func (c *Client) SendMail(ctx context.Context, to string, subject string, html string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sendRequest{
			From:    c.from,
			To:      []string{to},
			Subject: subject,
			Html:    html,
		}).
		Post("/emails")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("mail send failed: %s: %s", resp.Status(), resp.String())
	}
	return nil
}
