package repository

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/clipscribe/video-annotator/internal/annotations"
)

type awsRepository struct {
	client *s3.Client
}

func NewAwsRepository(awsClient *s3.Client) annotations.MediaStore {
	return &awsRepository{
		client: awsClient,
	}
}

func (a *awsRepository) UploadFile(ctx context.Context, bucket, key, localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	_, err = a.client.PutObject(
		ctx,
		&s3.PutObjectInput{
			Bucket: &bucket,
			Key:    &key,
			Body:   file,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to upload file : %w", err)
	}
	return nil
}
