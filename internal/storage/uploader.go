// Package storage は画像のオブジェクトストレージへのアップロードを提供する。
//
// S3互換エンドポイント（MinIO等）を想定し、静的クレデンシャルと
// パススタイルアドレッシングに対応する。ストレージが未設定の環境では
// DisabledUploaderがBACKEND_UNAVAILABLEを返し、アップロード以外の
// 機能は通常どおり動作する。
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/youssef/agora/internal/model"
)

// 画像用バケット。起動時に存在を保証する。
const (
	BucketArticleImages = "article-images"
	BucketNewsImages    = "news-images"
	BucketProfileImages = "profile-images"
)

// DefaultMaxUploadBytes はアップロードサイズ上限の既定値（5MB）。
const DefaultMaxUploadBytes = 5 * 1024 * 1024

// Buckets は全画像バケットの一覧を返す。
func Buckets() []string {
	return []string{BucketArticleImages, BucketNewsImages, BucketProfileImages}
}

// ValidBucket はnameが定義済みバケットかどうかを返す。
func ValidBucket(name string) bool {
	switch name {
	case BucketArticleImages, BucketNewsImages, BucketProfileImages:
		return true
	}
	return false
}

// Config はオブジェクトストレージの接続設定。
type Config struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	// PublicBaseURL が設定されている場合、公開URLの生成に
	// Endpointの代わりに使用する（CDNやリバースプロキシ経由の配信）。
	PublicBaseURL  string
	MaxUploadBytes int64
}

// Configured はアップロードに必要な設定が揃っているかどうかを返す。
func (c Config) Configured() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Uploader は画像アップロードのインターフェース。
type Uploader interface {
	// Upload は画像をバケットへ保存し、公開URLを返す。
	// contentTypeがimage/*でない場合はUNSUPPORTED_FILE_TYPE、
	// sizeが上限を超える場合はFILE_TOO_LARGEを返す。
	Upload(ctx context.Context, bucket, filename, contentType string, size int64, body io.Reader) (string, error)
}

// S3Uploader はS3互換ストレージへのアップロード実装。
type S3Uploader struct {
	client *s3.Client
	config Config
}

// NewS3Uploader はS3クライアントを生成し、画像バケットの存在を保証する。
func NewS3Uploader(ctx context.Context, cfg Config) (*S3Uploader, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("storage is not configured")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	u := &S3Uploader{client: client, config: cfg}

	for _, bucket := range Buckets() {
		if err := u.ensureBucket(ctx, bucket); err != nil {
			return nil, fmt.Errorf("failed to ensure bucket %s: %w", bucket, err)
		}
	}

	return u, nil
}

// Upload は画像をバケットへ保存し、公開URLを返す。
func (u *S3Uploader) Upload(ctx context.Context, bucket, filename, contentType string, size int64, body io.Reader) (string, error) {
	if err := ValidateUpload(bucket, contentType, size, u.config.MaxUploadBytes); err != nil {
		return "", err
	}

	key := ObjectKey(filename)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3: %w", err)
	}

	url := PublicURL(u.publicBase(), bucket, key)
	slog.Info("image uploaded",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int64("size", size),
	)
	return url, nil
}

// publicBase は公開URLのベースを返す。
func (u *S3Uploader) publicBase() string {
	if u.config.PublicBaseURL != "" {
		return u.config.PublicBaseURL
	}
	return u.config.Endpoint
}

// ensureBucket はバケットが存在しない場合に作成する。
// ローカル開発（MinIO）での初回起動に対応する。
func (u *S3Uploader) ensureBucket(ctx context.Context, bucket string) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return nil
	}

	_, err = u.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	slog.Info("bucket created", slog.String("bucket", bucket))
	return nil
}

// DisabledUploader はストレージ未設定時のアップロード実装。
// すべてのアップロードにBACKEND_UNAVAILABLEを返す。
type DisabledUploader struct{}

// NewDisabledUploader はDisabledUploaderを生成する。
func NewDisabledUploader() *DisabledUploader {
	return &DisabledUploader{}
}

// Upload は常にBACKEND_UNAVAILABLEを返す。
func (*DisabledUploader) Upload(_ context.Context, _, _, _ string, _ int64, _ io.Reader) (string, error) {
	return "", model.NewBackendUnavailableError("画像ストレージが設定されていません")
}

// ValidateUpload はバケット名・ファイル形式・サイズを検証する。
func ValidateUpload(bucket, contentType string, size, maxBytes int64) error {
	if !ValidBucket(bucket) {
		return model.NewValidationFailedError(fmt.Sprintf("不明なバケットです: %s", bucket))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return model.NewUnsupportedFileTypeError(contentType)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if size <= 0 {
		return model.NewValidationFailedError("ファイルが空です")
	}
	if size > maxBytes {
		return model.NewFileTooLargeError(maxBytes)
	}
	return nil
}

// ObjectKey はファイル名からランダムなオブジェクトキーを生成する。
// 元のファイル名は使用せず、拡張子のみを引き継ぐ。
// 推測可能なキーや名前の衝突を避けるため。
func ObjectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return uuid.New().String() + ext
}

// PublicURL はアップロード済みオブジェクトの公開URLを組み立てる。
func PublicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}

var _ Uploader = (*S3Uploader)(nil)
var _ Uploader = (*DisabledUploader)(nil)
