package cli

import (
	"context"
	"fmt"
	"strings"
)

// resolveID matches input against ids: exact id first, then a unique
// prefix.
func resolveID(kind, input string, ids []string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("%s ID is required", kind)
	}
	for _, id := range ids {
		if id == input {
			return id, nil
		}
	}
	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s not found: %q", kind, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}

func resolvePlanID(ctx context.Context, app *App, owner, input string) (string, error) {
	plans, err := app.Plans.List(ctx, owner, "")
	if err != nil {
		return "", err
	}
	ids := make([]string, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
	}
	return resolveID("plan", input, ids)
}

func resolveStudentID(ctx context.Context, app *App, owner, input string) (string, error) {
	students, err := app.Students.List(ctx, owner)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(students))
	for i, s := range students {
		ids[i] = s.ID
	}
	return resolveID("student", input, ids)
}
