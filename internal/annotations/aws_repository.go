package annotations

import "context"

// MediaStore archives job artifacts (source video, extracted audio) to object
// storage after a successful run.
type MediaStore interface {
	UploadFile(ctx context.Context, bucket, key, localPath string) error
}
