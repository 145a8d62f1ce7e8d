package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID       string    `json:"documentId"`
	UploaderID       string    `json:"uploaderId"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	FileName         string    `json:"fileName"`
	MimeType         string    `json:"mimeType"`
	SizeBytes        int64     `json:"sizeBytes"`
	IsPublic         bool      `json:"isPublic"`
	ModerationStatus string    `json:"moderationStatus"`
	ModerationReason string    `json:"moderationReason,omitempty"`
	DownloadCost     *int64    `json:"downloadCost"`
	DownloadCount    int64     `json:"downloadCount"`
	PageCount        int       `json:"pageCount,omitempty"`
	PreviewText      string    `json:"previewText,omitempty"`
	UploadedAt       time.Time `json:"uploadedAt"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:       doc.ID,
		UploaderID:       doc.UploaderID,
		Title:            doc.Title,
		Description:      doc.Description,
		FileName:         doc.FileName,
		MimeType:         doc.MimeType,
		SizeBytes:        doc.SizeBytes,
		IsPublic:         doc.IsPublic,
		ModerationStatus: string(doc.ModerationStatus),
		ModerationReason: doc.ModerationReason,
		DownloadCost:     doc.DownloadCost,
		DownloadCount:    doc.DownloadCount,
		PageCount:        doc.PageCount,
		PreviewText:      doc.PreviewText,
		UploadedAt:       doc.CreatedAt,
	}
}
