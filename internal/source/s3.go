package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/Paintersrp/linkrank/internal/graph"
	"github.com/Paintersrp/linkrank/internal/pathutil"
)

// ObjectAPI is the subset of the S3 client used to list and fetch documents.
type ObjectAPI interface {
	s3.ListObjectsV2APIClient
	manager.DownloadAPIClient
}

// S3Options configures the S3 client.
type S3Options struct {
	Region string
	// Endpoint points at an S3-compatible service. Path-style addressing is
	// used when it is set.
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3 reads every object below a bucket prefix.
type S3 struct {
	Bucket     string
	Prefix     string
	Extensions []string
	Workers    int

	client     ObjectAPI
	downloader *manager.Downloader
}

// NewS3 builds a source backed by the default AWS credential chain, or by
// static credentials when both keys are provided.
func NewS3(ctx context.Context, bucket, prefix string, extensions []string, opts S3Options) (*S3, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3WithClient(client, bucket, prefix, extensions), nil
}

// NewS3WithClient builds a source around an existing client.
func NewS3WithClient(client ObjectAPI, bucket, prefix string, extensions []string) *S3 {
	return &S3{
		Bucket:     bucket,
		Prefix:     prefix,
		Extensions: append([]string(nil), extensions...),
		client:     client,
		// Objects are fetched in parallel already; one part per object.
		downloader: manager.NewDownloader(client, func(d *manager.Downloader) {
			d.Concurrency = 1
		}),
	}
}

// Documents lists the bucket prefix and downloads every matching object.
// Documents are returned in key order.
func (s *S3) Documents(ctx context.Context) ([]graph.Document, error) {
	if s.Bucket == "" {
		return nil, errors.New("s3 bucket cannot be empty")
	}

	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]graph.Document, len(keys))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workerLimit(s.Workers))
	for i, key := range keys {
		eg.Go(func() error {
			buf := manager.NewWriteAtBuffer(nil)
			_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
				Bucket: aws.String(s.Bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				return fmt.Errorf("download s3://%s/%s: %w", s.Bucket, key, err)
			}
			docs[i] = graph.Document{Name: pathutil.DocumentName(key), Text: buf.Bytes()}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *S3) listKeys(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(s.Prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", s.Bucket, s.Prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			if !pathutil.HasExtension(key, s.Extensions) {
				continue
			}
			keys = append(keys, key)
		}
	}
	return keys, nil
}
