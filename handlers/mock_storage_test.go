package handlers

import (
	"mime/multipart"
	"sync"
)

type mockStorage struct {
	UploadMenuImageFn    func(file multipart.File, filename, contentType string) (string, error)
	UploadGalleryImageFn func(file multipart.File, filename, contentType string) (string, error)
	ImportMenuImageFn    func(imageURL, itemID string) (string, error)
	DeleteFileFn         func(objectPath string) error

	mu              sync.Mutex
	DeleteFileCalls []string
	ImportCalls     []string
	UploadCallCount int
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		DeleteFileCalls: []string{},
	}
}

func (m *mockStorage) UploadMenuImage(file multipart.File, filename, contentType string) (string, error) {
	m.mu.Lock()
	m.UploadCallCount++
	m.mu.Unlock()
	if m.UploadMenuImageFn != nil {
		return m.UploadMenuImageFn(file, filename, contentType)
	}
	return "https://storage.googleapis.com/test-bucket/menu/test_image.jpg", nil
}

func (m *mockStorage) UploadGalleryImage(file multipart.File, filename, contentType string) (string, error) {
	m.mu.Lock()
	m.UploadCallCount++
	m.mu.Unlock()
	if m.UploadGalleryImageFn != nil {
		return m.UploadGalleryImageFn(file, filename, contentType)
	}
	return "https://storage.googleapis.com/test-bucket/gallery/test_image.jpg", nil
}

func (m *mockStorage) ImportMenuImage(imageURL, itemID string) (string, error) {
	m.mu.Lock()
	m.ImportCalls = append(m.ImportCalls, imageURL)
	m.mu.Unlock()
	if m.ImportMenuImageFn != nil {
		return m.ImportMenuImageFn(imageURL, itemID)
	}
	return "https://storage.googleapis.com/test-bucket/menu/" + itemID + "_image.jpg", nil
}

func (m *mockStorage) DeleteFile(objectPath string) error {
	m.mu.Lock()
	m.DeleteFileCalls = append(m.DeleteFileCalls, objectPath)
	m.mu.Unlock()
	if m.DeleteFileFn != nil {
		return m.DeleteFileFn(objectPath)
	}
	return nil
}

func (m *mockStorage) deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.DeleteFileCalls...)
}
