package db

import "context"

var defaultLabels = []struct{ name, color string }{
	{"Bug", "#EF4444"},
	{"Feature", "#10B981"},
	{"Enhancement", "#8B5CF6"},
	{"Documentation", "#F59E0B"},
	{"UI/UX", "#EC4899"},
}

// Seed creates the default labels when the store has none, and a first user
// named username when it has no users. It returns the acting user's id, or ""
// when username is empty and no user exists.
func (db *DB) Seed(ctx context.Context, username string) (string, error) {
	labels, err := db.ListLabels(ctx)
	if err != nil {
		return "", err
	}
	if len(labels) == 0 {
		for _, l := range defaultLabels {
			if _, err := db.CreateLabel(ctx, l.name, l.color); err != nil {
				return "", err
			}
		}
	}

	users, err := db.ListUsers(ctx)
	if err != nil {
		return "", err
	}
	for _, u := range users {
		if username == "" || u.Name == username {
			return u.ID, nil
		}
	}
	if username == "" {
		return "", nil
	}
	u, err := db.CreateUser(ctx, username, "", "")
	if err != nil {
		return "", err
	}
	return u.ID, nil
}
