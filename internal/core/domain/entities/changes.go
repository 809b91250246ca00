package entities

// Classification partitions one run's remote list against the stored snapshot.
// Every identifier seen on either side lands in exactly one of the four sets.
type Classification struct {
	Create    []StarredRepository
	Update    []StarredRepository
	Unchanged []StarredRepository
	Delete    []int64
}

// RepositoryUpdate carries the new state of an existing record. README fields
// of Repository are only written when ReadmeRefreshed is set.
type RepositoryUpdate struct {
	Repository
	ReadmeRefreshed bool
}

// ChangeSet is everything a sync run writes, applied in a single transaction.
type ChangeSet struct {
	Create []Repository
	Update []RepositoryUpdate
	Delete []int64
}

func (c ChangeSet) Empty() bool {
	return len(c.Create) == 0 && len(c.Update) == 0 && len(c.Delete) == 0
}
