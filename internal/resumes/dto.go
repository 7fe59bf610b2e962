package resumes

import (
	"time"

	"job-tracker/internal/dates"
	"job-tracker/internal/export"
)

// ResumeResponse is the outward-facing representation of a resume.
type ResumeResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	FileName       string    `json:"fileName"`
	DisplayName    string    `json:"displayName"`
	FileURL        string    `json:"fileUrl"`
	FileSize       int64     `json:"fileSize"`
	FileSizeText   string    `json:"fileSizeText"`
	FileType       string    `json:"fileType"`
	PageCount      int       `json:"pageCount"`
	Tags           []string  `json:"tags"`
	IsDefault      bool      `json:"isDefault"`
	UploadDate     time.Time `json:"uploadDate"`
	UploadDateText string    `json:"uploadDateText"`
}

// ToResponse renders res for clients.
func ToResponse(res Resume) ResumeResponse {
	tags := res.Tags
	if tags == nil {
		tags = []string{}
	}
	return ResumeResponse{
		ID:             res.ID,
		UserID:         res.UserID,
		FileName:       res.FileName,
		DisplayName:    res.DisplayName,
		FileURL:        res.FileURL,
		FileSize:       res.FileSize,
		FileSizeText:   export.FormatFileSize(res.FileSize),
		FileType:       res.FileType,
		PageCount:      res.PageCount,
		Tags:           tags,
		IsDefault:      res.IsDefault,
		UploadDate:     res.UploadDate,
		UploadDateText: dates.FormatShort(res.UploadDate),
	}
}

// ToResponses renders a list.
func ToResponses(list []Resume) []ResumeResponse {
	out := make([]ResumeResponse, 0, len(list))
	for _, res := range list {
		out = append(out, ToResponse(res))
	}
	return out
}

type updateRequest struct {
	DisplayName *string   `json:"displayName"`
	Tags        *[]string `json:"tags"`
	IsDefault   *bool     `json:"isDefault"`
}
