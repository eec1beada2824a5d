package common

import "errors"

var (
	ErrInvalidColumn     = errors.New("column not found in table")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileNotFound      = errors.New("file not found")
	ErrEmptyTable        = errors.New("table has no header row")
	ErrSheetNotFound     = errors.New("sheet not found in workbook")
)
