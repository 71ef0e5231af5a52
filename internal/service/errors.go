package service

import "errors"

var (
	ErrCSVNotFound      = errors.New("essay CSV file not found")
	ErrNoValidDocuments = errors.New("no valid documents found in the CSV file")
)
