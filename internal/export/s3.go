package export

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Destination uploads the rendered history to an S3-compatible bucket.
type S3Destination struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Destination creates an S3 destination. If endpoint is non-empty,
// path-style addressing is enabled (for MinIO and similar).
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Destination{
		client: s3.NewFromConfig(cfg, s3opts...),
		bucket: bucket,
		key:    key,
	}, nil
}

// Write uploads the history as one JSONL object. The object metadata
// carries the analysis and fix counts and the collection time, so the
// bucket can be inspected without downloading the body.
func (d *S3Destination) Write(ctx context.Context, h *History) error {
	var buf bytes.Buffer
	if err := h.WriteJSONL(&buf); err != nil {
		return fmt.Errorf("render history: %w", err)
	}

	contentType := "application/x-ndjson"
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: &contentType,
		Metadata: map[string]string{
			"seam-analyses":     strconv.Itoa(len(h.Entries)),
			"seam-fixes":        strconv.Itoa(h.FixCount()),
			"seam-generated-at": h.GeneratedAt.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}
