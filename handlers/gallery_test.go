package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"catering-backend/models"
)

func TestGetGalleryActiveOnly(t *testing.T) {
	db := freshDB()
	router := setupGalleryRouter(db, newMockStorage())

	seedGallery(db, "wedding", true)
	seedGallery(db, "birthday", true)
	seedGallery(db, "draft", false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/gallery", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if result := parseResponseArray(w); len(result) != 2 {
		t.Errorf("expected 2 active photos, got %d", len(result))
	}
}

func TestGetAllGalleryIncludesHidden(t *testing.T) {
	db := freshDB()
	router := setupGalleryRouter(db, newMockStorage())
	_, token := seedTestUser(db, "chef@test.com", models.RoleStaff)

	seedGallery(db, "wedding", true)
	seedGallery(db, "draft", false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/admin/gallery", nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if result := parseResponseArray(w); len(result) != 2 {
		t.Errorf("expected 2 photos, got %d", len(result))
	}
}

func TestCreateGalleryImage(t *testing.T) {
	db := freshDB()
	storage := newMockStorage()
	router := setupGalleryRouter(db, storage)
	_, token := seedTestUser(db, "chef@test.com", models.RoleStaff)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest("POST", "/api/admin/gallery",
		map[string]string{"title": "Garden party", "caption": "120 guests", "is_active": "false"},
		map[string]string{"image": "party.jpg"}, token))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["image"] != "https://storage.googleapis.com/test-bucket/gallery/test_image.jpg" {
		t.Errorf("unexpected image url %v", resp["image"])
	}
	if resp["is_active"] != false {
		t.Errorf("expected hidden photo, got %v", resp["is_active"])
	}
	if storage.UploadCallCount != 1 {
		t.Errorf("expected 1 upload, got %d", storage.UploadCallCount)
	}

	var saved models.GalleryImage
	db.First(&saved)
	if saved.IsActive {
		t.Error("expected is_active false to be stored")
	}
}

func TestCreateGalleryImageRequiresImage(t *testing.T) {
	db := freshDB()
	router := setupGalleryRouter(db, newMockStorage())
	_, token := seedTestUser(db, "chef@test.com", models.RoleStaff)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest("POST", "/api/admin/gallery",
		map[string]string{"title": "Garden party"}, nil, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestCreateGalleryImageUploadFailure(t *testing.T) {
	db := freshDB()
	storage := newMockStorage()
	storage.UploadGalleryImageFn = func(multipart.File, string, string) (string, error) {
		return "", errors.New("bucket unavailable")
	}
	router := setupGalleryRouter(db, storage)
	_, token := seedTestUser(db, "chef@test.com", models.RoleStaff)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest("POST", "/api/admin/gallery",
		map[string]string{"title": "Garden party"}, map[string]string{"image": "party.jpg"}, token))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
}

func TestUpdateGalleryImageReplacesFile(t *testing.T) {
	db := freshDB()
	storage := newMockStorage()
	router := setupGalleryRouter(db, storage)
	_, token := seedTestUser(db, "chef@test.com", models.RoleStaff)
	img := seedGallery(db, "wedding", true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest("PUT", fmt.Sprintf("/api/admin/gallery/%s", img.ID),
		map[string]string{"caption": "New caption"}, map[string]string{"image": "new.jpg"}, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["caption"] != "New caption" || resp["title"] != "wedding" {
		t.Errorf("unexpected update result %v", resp)
	}
	deleted := storage.deleted()
	if len(deleted) != 1 || deleted[0] != "gallery/wedding.jpg" {
		t.Errorf("expected old image to be deleted, got %v", deleted)
	}
}

func TestDeleteGalleryImage(t *testing.T) {
	db := freshDB()
	storage := newMockStorage()
	router := setupGalleryRouter(db, storage)
	_, token := seedTestUser(db, "chef@test.com", models.RoleStaff)
	img := seedGallery(db, "wedding", true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", fmt.Sprintf("/api/admin/gallery/%s", img.ID), nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if deleted := storage.deleted(); len(deleted) != 1 {
		t.Errorf("expected storage delete, got %v", deleted)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", fmt.Sprintf("/api/admin/gallery/%s", img.ID), nil, token))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 on second delete, got %d", w.Code)
	}
}

func TestGalleryAdminRequiresAuth(t *testing.T) {
	router := setupGalleryRouter(freshDB(), newMockStorage())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest("POST", "/api/admin/gallery",
		map[string]string{"title": "x"}, map[string]string{"image": "x.jpg"}, ""))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}
