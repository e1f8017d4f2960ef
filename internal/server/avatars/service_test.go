package avatars

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/socialride/identity/internal/server/config"
)

func newSvc(t *testing.T) *Service {
	t.Helper()
	cfg := &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "avatars",
	}
	return NewService(cfg)
}

func stubPresignClient(t *testing.T) {
	t.Helper()
	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
}

func TestRandomStorageKey_Shape(t *testing.T) {
	key := RandomStorageKey()
	re := regexp.MustCompile(`^avatars/\d{4}/\d{2}/\d{2}/[0-9a-f-]{36}$`)
	if !re.MatchString(key) {
		t.Fatalf("unexpected key shape: %q", key)
	}
	if key == RandomStorageKey() {
		t.Fatal("keys must not repeat")
	}
}

func Test_getPresignClient_SuccessAndError(t *testing.T) {
	svc := newSvc(t)

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		if len(optFns) == 0 {
			t.Fatalf("expected config options")
		}
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}

	var capturedBaseEndpoint string
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint == nil {
			t.Fatalf("BaseEndpoint not set")
		}
		capturedBaseEndpoint = *opts.BaseEndpoint
		return &s3.Client{}
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		if c == nil {
			t.Fatalf("nil client passed to presign")
		}
		return &s3.PresignClient{}
	}

	pc, err := svc.getPresignClient()
	if err != nil {
		t.Fatalf("getPresignClient err: %v", err)
	}
	if pc == nil {
		t.Fatalf("nil presign client")
	}
	if capturedBaseEndpoint != "http://127.0.0.1:9000" {
		t.Fatalf("BaseEndpoint mismatch: %q", capturedBaseEndpoint)
	}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	pc, err = svc.getPresignClient()
	if err == nil || err.Error() != "load-fail" {
		t.Fatalf("expected load-fail, got %v (pc=%v)", err, pc)
	}
}

func TestUploadURL_Success(t *testing.T) {
	svc := newSvc(t)
	stubPresignClient(t)

	origPut := presignPutObject
	t.Cleanup(func() { presignPutObject = origPut })

	var capturedBucket, capturedKey string
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		capturedBucket = *in.Bucket
		capturedKey = *in.Key
		return &v4.PresignedHTTPRequest{URL: "http://signed/put"}, nil
	}

	key, url, err := svc.UploadURL(context.Background())
	if err != nil {
		t.Fatalf("UploadURL err: %v", err)
	}
	if url != "http://signed/put" {
		t.Fatalf("unexpected url: %q", url)
	}
	if capturedBucket != "avatars" || capturedKey != key {
		t.Fatalf("presign saw bucket=%q key=%q, returned key=%q", capturedBucket, capturedKey, key)
	}
	if !strings.HasPrefix(key, "avatars/") {
		t.Fatalf("unexpected key: %q", key)
	}
}

func TestUploadURL_ErrorFromPresign(t *testing.T) {
	svc := newSvc(t)
	stubPresignClient(t)

	origPut := presignPutObject
	t.Cleanup(func() { presignPutObject = origPut })

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-put-fail")
	}

	_, _, err := svc.UploadURL(context.Background())
	if err == nil || err.Error() != "presign-put-fail" {
		t.Fatalf("want presign-put-fail, got %v", err)
	}
}

func TestDownloadURL_Success(t *testing.T) {
	svc := newSvc(t)
	stubPresignClient(t)

	origGet := presignGetObject
	t.Cleanup(func() { presignGetObject = origGet })

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if *in.Key != "avatars/2026/01/02/abc" {
			return nil, errors.New("unexpected key")
		}
		return &v4.PresignedHTTPRequest{URL: "http://signed/get"}, nil
	}

	url, err := svc.DownloadURL(context.Background(), "avatars/2026/01/02/abc")
	if err != nil {
		t.Fatalf("DownloadURL err: %v", err)
	}
	if url != "http://signed/get" {
		t.Fatalf("unexpected url: %q", url)
	}
}
