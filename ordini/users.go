package ordini

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Register stores a username to delivery-address mapping. Usernames are
// case-sensitive and immutable once registered; there is no update or
// delete. No credential is issued, later requests identify themselves by
// presenting the same username string.
func (s *Service) Register(ctx context.Context, username, address string) error {
	_, span := tracer.Start(ctx, "Service.Register", trace.WithAttributes(
		attribute.String("user.username", username),
	))
	defer span.End()

	username = strings.TrimSpace(username)
	address = strings.TrimSpace(address)

	if username == "" || address == "" {
		return invalidArgument("Both 'username' and 'address' fields are required and cannot be empty")
	}
	if utf8.RuneCountInString(username) > maxUsernameLen || utf8.RuneCountInString(address) > maxAddressLen {
		return invalidArgument("Username cannot exceed 50 characters and address cannot exceed 100 characters")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return conflictf("Username '%s' already exists", username)
	}

	s.users[username] = address
	return nil
}
