package service

import (
	"errors"
	"testing"

	"fair_exam_backend/internal/util"
)

func TestExtractTextTXT(t *testing.T) {
	s := NewDocumentService()

	got, err := s.ExtractText([]byte("1. What is a stack?\n2. Define a queue."), "exam.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1. What is a stack?\n2. Define a queue." {
		t.Errorf("text = %q", got)
	}
}

func TestExtractTextTXTUppercaseExtension(t *testing.T) {
	s := NewDocumentService()
	if _, err := s.ExtractText([]byte("Question 1: answer below."), "EXAM.TXT"); err != nil {
		t.Fatalf("uppercase extension should be accepted: %v", err)
	}
}

func TestExtractTextTXTLatin1Fallback(t *testing.T) {
	s := NewDocumentService()

	// 0xE9 是 Latin-1 的 é，不是合法 UTF-8
	got, err := s.ExtractText([]byte{'c', 'a', 'f', 0xE9}, "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "café" {
		t.Errorf("text = %q, want café", got)
	}
}

func TestExtractTextUnsupportedExtension(t *testing.T) {
	s := NewDocumentService()

	_, err := s.ExtractText([]byte("irrelevant"), "paper.docx")
	if !errors.Is(err, util.ErrUnsupportedFileType) {
		t.Fatalf("err = %v, want ErrUnsupportedFileType", err)
	}
	if !util.IsInputError(err) {
		t.Error("unsupported file type should classify as an input error")
	}
}

func TestExtractTextCorruptPDF(t *testing.T) {
	s := NewDocumentService()

	_, err := s.ExtractText([]byte("not a real pdf payload"), "exam.pdf")
	if !errors.Is(err, util.ErrUnparseableDocument) {
		t.Fatalf("err = %v, want ErrUnparseableDocument", err)
	}
	if !util.IsInputError(err) {
		t.Error("unparseable document should classify as an input error")
	}
}
