package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"filekeeper/config"
)

// ObjectInfo 对象存储返回的单个文件信息
type ObjectInfo struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	Updated     time.Time `json:"updated"`
	ContentType string    `json:"content_type"`
}

// ObjectPage 一页对象列表。NextPageToken 非空表示还有后续页。
type ObjectPage struct {
	Objects       []ObjectInfo `json:"files"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

// ObjectStore 对象存储后端的能力集合。通过接口注入，便于测试替换。
type ObjectStore interface {
	// Bucket 返回存储桶名称
	Bucket() string
	// Exists 检查对象是否存在
	Exists(ctx context.Context, name string) (bool, error)
	// Put 写入对象，返回完整定位URI（如 s3://bucket/name）
	Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (string, error)
	// Delete 删除对象
	Delete(ctx context.Context, name string) error
	// List 按后端原生游标分页列出对象
	List(ctx context.Context, pageToken string, maxResults int32) (*ObjectPage, error)
	// PresignGet 签发限时下载URL
	PresignGet(ctx context.Context, name string, expires time.Duration) (string, error)
	// PresignPut 签发限时上传URL，绑定指定 content type
	PresignPut(ctx context.Context, name, contentType string, expires time.Duration) (string, error)
}

// S3ObjectStore 基于 S3 的对象存储实现
type S3ObjectStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3ObjectStore 创建S3对象存储客户端
func NewS3ObjectStore(cfg *config.StorageConfig) (*S3ObjectStore, error) {
	ctx := context.TODO()

	var awsCfg aws.Config
	var err error

	if cfg.S3Endpoint != "" {
		// 自定义endpoint（如MinIO）
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:           cfg.S3Endpoint,
					SigningRegion: cfg.S3Region,
				}, nil
			})

		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.S3Region),
			awsconfig.WithEndpointResolverWithOptions(customResolver),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(
					cfg.S3AccessKey,
					cfg.S3SecretKey,
					"",
				),
			),
		)
	} else {
		// 标准AWS S3
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.S3Region),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(
					cfg.S3AccessKey,
					cfg.S3SecretKey,
					"",
				),
			),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)

	return &S3ObjectStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.S3Bucket,
	}, nil
}

func (s *S3ObjectStore) Bucket() string {
	return s.bucket
}

// Exists 通过 HeadObject 检查对象是否存在
func (s *S3ObjectStore) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object: %w", err)
	}
	return true, nil
}

// Put 上传对象并返回定位URI
func (s *S3ObjectStore) Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(name),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, name), nil
}

// Delete 删除对象
func (s *S3ObjectStore) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// List 基于 ListObjectsV2 的原生游标分页。
// ListObjectsV2 不返回每个对象的 content type，需要逐个 HeadObject 补齐。
func (s *S3ObjectStore) List(ctx context.Context, pageToken string, maxResults int32) (*ObjectPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		MaxKeys: aws.Int32(maxResults),
	}
	if pageToken != "" {
		input.ContinuationToken = aws.String(pageToken)
	}

	result, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	page := &ObjectPage{Objects: make([]ObjectInfo, 0, len(result.Contents))}
	for _, obj := range result.Contents {
		info := ObjectInfo{
			Name: aws.ToString(obj.Key),
			Size: aws.ToInt64(obj.Size),
		}
		if obj.LastModified != nil {
			info.Updated = *obj.LastModified
		}
		head, headErr := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    obj.Key,
		})
		if headErr == nil {
			info.ContentType = aws.ToString(head.ContentType)
		}
		page.Objects = append(page.Objects, info)
	}

	if result.NextContinuationToken != nil {
		page.NextPageToken = aws.ToString(result.NextContinuationToken)
	}

	return page, nil
}

// PresignGet 签发限时下载URL
func (s *S3ObjectStore) PresignGet(ctx context.Context, name string, expires time.Duration) (string, error) {
	request, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned GET URL: %w", err)
	}
	return request.URL, nil
}

// PresignPut 签发限时上传URL。客户端必须用 HTTP PUT 且 Content-Type 完全一致。
func (s *S3ObjectStore) PresignPut(ctx context.Context, name, contentType string, expires time.Duration) (string, error) {
	request, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(name),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned PUT URL: %w", err)
	}
	return request.URL, nil
}
