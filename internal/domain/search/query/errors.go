package query

import "github.com/kailas-cloud/fts/internal/domain"

func invalid(format string, args ...any) error {
	return domain.InvalidArgument(format, args...)
}

func missing(field string) error {
	return domain.NewMissingField(field)
}
