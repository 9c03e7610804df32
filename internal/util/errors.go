package util

import "errors"

// 输入类错误：直接以 400 返回给调用方，不重试。
var (
	ErrUnsupportedFileType = errors.New("unsupported file type: only PDF and TXT files are supported")
	ErrUnparseableDocument = errors.New("failed to parse document")
	ErrNotAnExamPaper      = errors.New("uploaded file does not appear to be a valid exam paper")
	ErrNotASyllabus        = errors.New("uploaded file does not appear to be a valid syllabus")
	ErrTooFewQuestions     = errors.New("could not extract sufficient questions from exam paper; please ensure the file contains clearly numbered or formatted questions")
)

var inputErrors = []error{
	ErrUnsupportedFileType,
	ErrUnparseableDocument,
	ErrNotAnExamPaper,
	ErrNotASyllabus,
	ErrTooFewQuestions,
}

// IsInputError 判断是否为用户输入错误（而非内部错误）
func IsInputError(err error) bool {
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
