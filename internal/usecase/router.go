package usecase

import "sales-segmentation/internal/domain"

// Router decides which backend serves a reporting year.
// Years up to and including CutoverYear are frozen in the archive.
type Router struct {
	CutoverYear int
}

// NewRouter creates a router for the given cutover year.
func NewRouter(cutoverYear int) Router {
	return Router{CutoverYear: cutoverYear}
}

// Resolve returns the backend for year.
func (r Router) Resolve(year int) domain.SourceKind {
	if year <= r.CutoverYear {
		return domain.SourceArchive
	}
	return domain.SourceLive
}
