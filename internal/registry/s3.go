package registry

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ion-tools/ion/internal/userdata"
)

// S3Fetcher downloads a registry stored under an s3://bucket/prefix.
type S3Fetcher struct {
	Region string
	// Endpoint overrides the S3 endpoint, e.g. for MinIO. Path-style
	// addressing is used when set.
	Endpoint string
	// Client replaces the client built from Region and Endpoint.
	Client *s3.Client
}

func parseS3(locator string) (bucket, prefix string, err error) {
	u, err := url.Parse(locator)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid s3 locator %q: want s3://bucket/prefix", locator)
	}
	prefix = strings.TrimPrefix(u.Path, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return u.Host, prefix, nil
}

func (f S3Fetcher) client() *s3.Client {
	if f.Client != nil {
		return f.Client
	}
	region := f.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := s3.Options{
		Region:      region,
		Credentials: credentialsFromEnv(),
	}
	if f.Endpoint != "" {
		opts.BaseEndpoint = aws.String(f.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

// credentialsFromEnv reads the standard AWS_* variables. Without them,
// requests are sent unsigned so public buckets work.
func credentialsFromEnv() aws.CredentialsProvider {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.AnonymousCredentials{}
	}
	token := os.Getenv("AWS_SESSION_TOKEN")
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    token,
			Source:          "environment",
		}, nil
	})
}

// Check issues HeadBucket.
func (f S3Fetcher) Check(ctx context.Context, locator string) error {
	bucket, _, err := parseS3(locator)
	if err != nil {
		return err
	}
	if _, err := f.client().HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	return nil
}

// Fetch downloads every object under the prefix into dst.
func (f S3Fetcher) Fetch(ctx context.Context, locator, dst string) error {
	bucket, prefix, err := parseS3(locator)
	if err != nil {
		return err
	}
	client := f.client()
	if err := os.MkdirAll(dst, userdata.DirPermNormal); err != nil {
		return err
	}

	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("listing %s: %w", locator, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			rel := strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
			if rel == "" || strings.HasSuffix(rel, "/") {
				continue
			}
			target, err := entryPath(dst, rel)
			if err != nil {
				return err
			}
			if err := f.download(ctx, client, bucket, key, target); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f S3Fetcher) download(ctx context.Context, client *s3.Client, bucket, key, target string) error {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("getting s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	if err := os.MkdirAll(filepath.Dir(target), userdata.DirPermNormal); err != nil {
		return err
	}
	file, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, out.Body); err != nil {
		file.Close()
		return fmt.Errorf("downloading %s: %w", key, err)
	}
	return file.Close()
}
