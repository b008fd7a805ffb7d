package firebase

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

var App *firebase.App

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename removes special characters from filenames and limits length.
func sanitizeFilename(filename string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(filename, "_")
	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}
	if sanitized == "" || sanitized == "." || sanitized == ".." {
		sanitized = "file"
	}
	return sanitized
}

// ClientOptions builds credentials from GOOGLE_APPLICATION_CREDENTIALS, which
// may hold either inline JSON or a file path.
func ClientOptions() []option.ClientOption {
	credJSON := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if credJSON == "" {
		log.Println("Warning: GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
		return nil
	}
	if strings.HasPrefix(credJSON, "{") {
		log.Println("Using Firebase credentials from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credJSON))}
	}
	log.Println("Using Firebase credentials from file:", credJSON)
	return []option.ClientOption{option.WithCredentialsFile(credJSON)}
}

func Init() {
	var conf *firebase.Config
	if projectID := os.Getenv("FIREBASE_PROJECT_ID"); projectID != "" {
		conf = &firebase.Config{
			ProjectID:     projectID,
			StorageBucket: os.Getenv("FIREBASE_STORAGE_BUCKET"),
		}
	}

	app, err := firebase.NewApp(context.Background(), conf, ClientOptions()...)
	if err != nil {
		log.Fatalf("Firebase init failed: %v", err)
	}

	App = app
	log.Println("Firebase initialized successfully")
}

func bucketHandle(ctx context.Context) (*storage.BucketHandle, string, error) {
	if App == nil {
		return nil, "", fmt.Errorf("firebase app not initialized")
	}
	bucketName := os.Getenv("FIREBASE_STORAGE_BUCKET")
	if bucketName == "" {
		return nil, "", fmt.Errorf("FIREBASE_STORAGE_BUCKET not set")
	}

	client, err := App.Storage(ctx)
	if err != nil {
		return nil, "", err
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, "", err
	}
	return bucket, bucketName, nil
}

// upload streams r to objectPath and makes it publicly readable.
func upload(ctx context.Context, objectPath string, r io.Reader, contentType string) (string, error) {
	bucket, bucketName, err := bucketHandle(ctx)
	if err != nil {
		return "", err
	}

	obj := bucket.Object(objectPath)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %v", err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		log.Printf("Warning: failed to set public ACL on %s: %v", objectPath, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectPath), nil
}

// ObjectPath names an uploaded file inside folder.
func ObjectPath(folder, filename string) string {
	return fmt.Sprintf("%s/%d_%s", folder, time.Now().Unix(), sanitizeFilename(filename))
}

func UploadMenuImage(file multipart.File, filename, contentType string) (string, error) {
	return upload(context.Background(), ObjectPath("menu", filename), file, contentType)
}

func UploadGalleryImage(file multipart.File, filename, contentType string) (string, error) {
	return upload(context.Background(), ObjectPath("gallery", filename), file, contentType)
}

// ImportMenuImage copies a remote image into the menu folder.
func ImportMenuImage(imageURL, itemID string) (string, error) {
	body, contentType, err := FetchRemoteImage(imageURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	objectPath := fmt.Sprintf("menu/%s_%s", sanitizeFilename(itemID), uuid.New().String()[:8])
	return upload(context.Background(), objectPath, body, contentType)
}

// DeleteFile deletes a file from Firebase Storage given its object path.
func DeleteFile(objectPath string) error {
	ctx := context.Background()
	bucket, bucketName, err := bucketHandle(ctx)
	if err != nil {
		return err
	}

	if err := bucket.Object(objectPath).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %v", objectPath, err)
	}

	log.Printf("Deleted file %s from bucket %s", objectPath, bucketName)
	return nil
}
