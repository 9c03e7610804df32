package util

// 文件上传相关常量
const (
	MimePDF         = "application/pdf"
	MimeText        = "text/"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedDocumentExtensions = []string{".pdf", ".txt"}
	AllowedDocumentMimeTypes  = []string{MimePDF, MimeText, MimeOctetStream}
)
