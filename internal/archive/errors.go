package archive

import "errors"

var (
	ErrDatabaseRequired = errors.New("archive: database handle is required")
	ErrSiteIDRequired   = errors.New("archive: site id is required")
	ErrSlugRequired     = errors.New("archive: slug is required")
	ErrFilenameRequired = errors.New("archive: filename is required")
	ErrHashRequired     = errors.New("archive: hash is required")
)
