package archive

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewArticleRepository creates a repository for article revisions.
func NewArticleRepository(db *bun.DB) repository.Repository[*Article] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Article]{
		NewRecord:          func() *Article { return &Article{} },
		GetID:              func(article *Article) uuid.UUID { return article.ID },
		SetID:              func(article *Article, id uuid.UUID) { article.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(article *Article) string { return article.Slug },
	})
}

// NewFileRepository creates a repository for media files.
func NewFileRepository(db *bun.DB) repository.Repository[*File] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*File]{
		NewRecord:          func() *File { return &File{} },
		GetID:              func(file *File) uuid.UUID { return file.ID },
		SetID:              func(file *File, id uuid.UUID) { file.ID = id },
		GetIdentifier:      func() string { return "filename" },
		GetIdentifierValue: func(file *File) string { return file.Filename },
	})
}

// NewDownloadRepository creates a repository for download records.
func NewDownloadRepository(db *bun.DB) repository.Repository[*Download] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Download]{
		NewRecord:          func() *Download { return &Download{} },
		GetID:              func(dl *Download) uuid.UUID { return dl.ID },
		SetID:              func(dl *Download, id uuid.UUID) { dl.ID = id },
		GetIdentifier:      func() string { return "hash" },
		GetIdentifierValue: func(dl *Download) string { return dl.Hash },
	})
}
