package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// slugWriteAttempts bounds how often a write is replayed after losing a slug
// race to a concurrent save.
const slugWriteAttempts = 3

// ErrSlugConflict is returned when concurrent saves keep claiming the same slug.
var ErrSlugConflict = errors.New("slug is already taken")

// writeWithSlugRetry runs write and replays it when the unique slug index
// rejects the row. Each replay runs the slug hook again against fresh data.
func writeWithSlugRetry(write func() error) error {
	var err error
	for attempt := 0; attempt < slugWriteAttempts; attempt++ {
		err = write()
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrSlugConflict, err)
}
