package services

import (
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
)

func validation(op, msg string) error {
	return domainagg.NewError(domainagg.CodeValidation, op, msg, nil)
}

func notFound(op, msg string) error {
	return domainagg.NewError(domainagg.CodeNotFound, op, msg, nil)
}
