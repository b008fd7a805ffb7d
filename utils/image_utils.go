package utils

import (
	"fmt"
	"os"
	"strings"
)

const firebasePublicPrefix = "https://storage.googleapis.com/"

// ExtractObjectPath extracts the storage object path from a public image URL.
// Firebase URLs carry the bucket as the first path segment. R2 URLs start
// with R2_PUBLIC_BASE_URL.
func ExtractObjectPath(url string) (string, error) {
	if base := strings.TrimSuffix(os.Getenv("R2_PUBLIC_BASE_URL"), "/"); base != "" && strings.HasPrefix(url, base+"/") {
		path := strings.TrimPrefix(url, base+"/")
		if path == "" {
			return "", fmt.Errorf("invalid URL format")
		}
		return path, nil
	}

	if !strings.HasPrefix(url, firebasePublicPrefix) {
		return "", fmt.Errorf("invalid URL")
	}

	parts := strings.SplitN(strings.TrimPrefix(url, firebasePublicPrefix), "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", fmt.Errorf("invalid URL format")
	}
	return parts[1], nil
}
