// Package oss uploads finished clips to Aliyun object storage when the
// deployment opts in.
package oss

import (
	"context"
	"fmt"
	"strings"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	"go.uber.org/zap"

	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

type Client struct {
	client *oss.Client
	bucket string
	region string
	prefix string
}

func NewClient(region, bucket, accessKeyId, accessKeySecret, pathPrefix string) *Client {
	cfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyId, accessKeySecret)).
		WithRegion(region)

	return &Client{
		client: oss.NewClient(cfg),
		bucket: bucket,
		region: region,
		prefix: strings.Trim(pathPrefix, "/"),
	}
}

// UploadClip pushes a local file and returns its public URL.
func (c *Client) UploadClip(ctx context.Context, localPath, objectKey string) (string, error) {
	if c.prefix != "" {
		objectKey = c.prefix + "/" + objectKey
	}

	_, err := c.client.PutObjectFromFile(ctx, &oss.PutObjectRequest{
		Bucket: oss.Ptr(c.bucket),
		Key:    oss.Ptr(objectKey),
	}, localPath)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeUploadFailed, "Clip upload failed", err)
	}

	url := fmt.Sprintf("https://%s.oss-%s.aliyuncs.com/%s", c.bucket, c.region, objectKey)
	log.GetLogger().Info("clip uploaded",
		zap.String("local", localPath),
		zap.String("url", url))
	return url, nil
}
