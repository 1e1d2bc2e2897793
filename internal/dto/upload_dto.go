package dto

// UploadResponse describes a stored document (resume or academic records).
type UploadResponse struct {
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	SizeBytes   int64  `json:"size_bytes"`
	ContentType string `json:"content_type"`
}
