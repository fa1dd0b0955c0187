package tag

// Service provides the tag catalogue to handlers and the crawler.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// List returns up to limit tags. Storage errors yield an empty list.
func (s *Service) List(limit int) []Tag {
	items, err := s.repo.List(limit)
	if err != nil {
		return []Tag{}
	}
	for i := range items {
		if items[i].En == "" {
			items[i].En = items[i].EnShort
		}
	}
	return items
}

func (s *Service) Upsert(tags []Tag) error {
	return s.repo.Upsert(tags)
}
