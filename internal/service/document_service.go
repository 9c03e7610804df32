package service

import (
	"bytes"
	"fair_exam_backend/internal/util"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// DocumentService 将上传的原始字节解码为纯文本。
// 仅支持 PDF 与 TXT，按文件扩展名分发。
type DocumentService struct{}

func NewDocumentService() *DocumentService {
	return &DocumentService{}
}

func (s *DocumentService) ExtractText(data []byte, filename string) (string, error) {
	lower := strings.ToLower(filename)

	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return s.extractPDF(data)
	case strings.HasSuffix(lower, ".txt"):
		return s.extractTXT(data)
	default:
		return "", fmt.Errorf("%w: %s", util.ErrUnsupportedFileType, filename)
	}
}

func (s *DocumentService) extractPDF(data []byte) (text string, err error) {
	// pdf 库对损坏文件可能 panic，统一折算为解码失败
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", util.ErrUnparseableDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrUnparseableDocument, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrUnparseableDocument, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrUnparseableDocument, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

func (s *DocumentService) extractTXT(data []byte) (string, error) {
	if utf8.Valid(data) {
		return strings.TrimSpace(string(data)), nil
	}

	// 非 UTF-8 按 Latin-1 逐字节转码
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return strings.TrimSpace(string(runes)), nil
}
