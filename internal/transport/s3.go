package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Options 描述 s3:// 源的连接参数。
type S3Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3Fetcher 将 s3://bucket/key 映射为对象读取，NoSuchKey 视为 404。
type S3Fetcher struct {
	client *minio.Client
}

// NewS3Fetcher 创建 minio 客户端；未提供密钥时以匿名方式访问公共桶。
func NewS3Fetcher(opts S3Options) (*S3Fetcher, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = "us-east-1"
	}

	var creds *credentials.Credentials
	access := strings.TrimSpace(opts.AccessKey)
	secret := strings.TrimSpace(opts.SecretKey)
	if access != "" && secret != "" {
		creds = credentials.NewStaticV4(access, secret, "")
	} else {
		creds = credentials.NewStatic("", "", "", credentials.SignatureAnonymous)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: opts.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Fetcher{client: client}, nil
}

func (f *S3Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	bucket, key, err := splitS3URL(rawURL)
	if err != nil {
		return nil, err
	}

	obj, err := f.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if status, ok := s3Status(err); ok {
			return &Response{URL: rawURL, StatusCode: status}, nil
		}
		return nil, err
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		if status, ok := s3Status(err); ok {
			return &Response{URL: rawURL, StatusCode: status}, nil
		}
		return nil, err
	}
	return &Response{URL: rawURL, StatusCode: http.StatusOK, Body: body}, nil
}

// s3Status 把对象存储的业务错误翻译成 HTTP 状态码，其他错误视为传输失败。
func s3Status(err error) (int, bool) {
	errResp := minio.ToErrorResponse(err)
	switch errResp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return http.StatusNotFound, true
	case "AccessDenied":
		return http.StatusForbidden, true
	}
	if errResp.StatusCode >= 400 {
		return errResp.StatusCode, true
	}
	return 0, false
}

func splitS3URL(rawURL string) (string, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parse url %s: %w", rawURL, err)
	}
	if parsed.Scheme != "s3" {
		return "", "", fmt.Errorf("s3 fetcher cannot serve %s", rawURL)
	}
	bucket := parsed.Host
	key := strings.TrimLeft(parsed.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url requires bucket and key: %s", rawURL)
	}
	return bucket, key, nil
}
