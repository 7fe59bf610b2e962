package resumes

import (
	"io"
	"time"
)

// Resume is an uploaded file's metadata. The bytes live in the object store
// under StorageKey.
type Resume struct {
	ID          string
	UserID      string
	FileName    string
	DisplayName string
	FileURL     string
	StorageKey  string
	FileSize    int64
	FileType    string
	PageCount   int
	Tags        []string
	IsDefault   bool
	UploadDate  time.Time
}

// UploadInput is a submitted upload.
type UploadInput struct {
	DisplayName string
	FileName    string
	ContentType string
	Size        int64
	Tags        []string
	IsDefault   bool
	Body        io.Reader
}

// Patch is a metadata update; nil fields are left unchanged.
type Patch struct {
	DisplayName *string
	Tags        *[]string
	IsDefault   *bool
}

// Rules are the upload limits shown next to the upload form.
type Rules struct {
	MaxSize           int64    `json:"maxSize"`
	MaxSizeMB         int64    `json:"maxSizeMB"`
	AllowedTypes      []string `json:"allowedTypes"`
	AllowedExtensions []string `json:"allowedExtensions"`
}

const (
	mimePDF       = "application/pdf"
	maxUploadSize = 10 << 20
)

// DefaultRules accepts PDFs up to 10MB.
func DefaultRules() Rules {
	return Rules{
		MaxSize:           maxUploadSize,
		MaxSizeMB:         maxUploadSize / (1 << 20),
		AllowedTypes:      []string{mimePDF},
		AllowedExtensions: []string{".pdf"},
	}
}
