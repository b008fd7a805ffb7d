package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"catering-backend/firebase"
)

// objectAPI is the subset of *s3.Client the R2 backend uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// R2Client stores images in a Cloudflare R2 bucket through its S3 API.
type R2Client struct {
	client  objectAPI
	bucket  string
	baseURL string
}

func NewR2Client(ctx context.Context) (*R2Client, error) {
	endpoint := os.Getenv("R2_ENDPOINT")
	accessKey := os.Getenv("R2_ACCESS_KEY")
	secretKey := os.Getenv("R2_SECRET_KEY")
	bucket := os.Getenv("R2_BUCKET_NAME")
	baseURL := strings.TrimSuffix(os.Getenv("R2_PUBLIC_BASE_URL"), "/")

	if endpoint == "" || bucket == "" {
		return nil, fmt.Errorf("R2_ENDPOINT and R2_BUCKET_NAME must be set")
	}

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
		config.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					if service == s3.ServiceID {
						return aws.Endpoint{URL: endpoint, SigningRegion: "auto"}, nil
					}
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				},
			),
		),
	)
	if err != nil {
		return nil, err
	}

	return &R2Client{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// PublicBaseURL is the prefix of every URL this client hands out.
func (r *R2Client) PublicBaseURL() string {
	return r.baseURL
}

func (r *R2Client) put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s", r.baseURL, key), nil
}

func (r *R2Client) UploadMenuImage(file multipart.File, filename, contentType string) (string, error) {
	return r.put(context.Background(), firebase.ObjectPath("menu", filename), file, contentType)
}

func (r *R2Client) UploadGalleryImage(file multipart.File, filename, contentType string) (string, error) {
	return r.put(context.Background(), firebase.ObjectPath("gallery", filename), file, contentType)
}

func (r *R2Client) ImportMenuImage(imageURL, itemID string) (string, error) {
	body, contentType, err := firebase.FetchRemoteImage(imageURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	key := firebase.ObjectPath("menu", itemID+"_"+uuid.New().String()[:8])
	return r.put(context.Background(), key, body, contentType)
}

func (r *R2Client) DeleteFile(objectPath string) error {
	_, err := r.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(objectPath),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %v", objectPath, err)
	}
	log.Printf("Deleted file %s from bucket %s", objectPath, r.bucket)
	return nil
}
