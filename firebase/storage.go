package firebase

import "mime/multipart"

// StorageClient abstracts image storage for dependency injection and testing.
type StorageClient interface {
	UploadMenuImage(file multipart.File, filename, contentType string) (string, error)
	UploadGalleryImage(file multipart.File, filename, contentType string) (string, error)
	ImportMenuImage(imageURL, itemID string) (string, error)
	DeleteFile(objectPath string) error
}

// FirebaseStorageClient is the real implementation that delegates to package-level functions.
type FirebaseStorageClient struct{}

func NewStorageClient() StorageClient {
	return &FirebaseStorageClient{}
}

func (f *FirebaseStorageClient) UploadMenuImage(file multipart.File, filename, contentType string) (string, error) {
	return UploadMenuImage(file, filename, contentType)
}

func (f *FirebaseStorageClient) UploadGalleryImage(file multipart.File, filename, contentType string) (string, error) {
	return UploadGalleryImage(file, filename, contentType)
}

func (f *FirebaseStorageClient) ImportMenuImage(imageURL, itemID string) (string, error) {
	return ImportMenuImage(imageURL, itemID)
}

func (f *FirebaseStorageClient) DeleteFile(objectPath string) error {
	return DeleteFile(objectPath)
}
