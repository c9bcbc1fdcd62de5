// Package assign selects the least-loaded user for a task.
package assign

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

// LoadFunc returns the number of open tasks currently assigned to user.
type LoadFunc func(user domain.User) (int, error)

// SelectAssignee scans users in order and returns the one with the strictly
// smallest load. Ties keep the earliest user, so a stable input order gives
// a stable result. It returns nil, nil for an empty candidate set. The first
// load error aborts the selection.
func SelectAssignee(users []domain.User, loadOf LoadFunc) (*domain.User, error) {
	if len(users) == 0 {
		return nil, nil
	}
	if loadOf == nil {
		return nil, errors.New("load function cannot be nil")
	}

	best := -1
	bestLoad := 0
	for i := range users {
		load, err := loadOf(users[i])
		if err != nil {
			return nil, fmt.Errorf("failed to load open task count for user %s: %w", users[i].ID, err)
		}
		if best == -1 || load < bestLoad {
			best = i
			bestLoad = load
		}
	}

	selected := users[best]
	return &selected, nil
}
