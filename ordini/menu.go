package ordini

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Menu returns the current menu in order. Positions in the returned slice
// are the IDs DeletePizza takes.
func (s *Service) Menu(ctx context.Context) []string {
	_, span := tracer.Start(ctx, "Service.Menu")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.menu...)
}

// AddPizza appends a pizza to the menu. Names are unique compared
// case-insensitively.
func (s *Service) AddPizza(ctx context.Context, name string, asAdmin bool) error {
	_, span := tracer.Start(ctx, "Service.AddPizza", trace.WithAttributes(
		attribute.String("menu.pizza", name),
	))
	defer span.End()

	if !asAdmin {
		return errUnauthorized()
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return invalidArgument("Pizza name is required")
	}
	if utf8.RuneCountInString(name) > maxPizzaNameLen {
		return invalidArgument("Pizza name cannot exceed 50 characters")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.menuIndex(name) >= 0 {
		return conflictf("Pizza '%s' already exists in the menu", name)
	}

	s.menu = append(s.menu, name)
	return nil
}

// DeletePizza removes the pizza at the given position, shifting later
// entries down by one. Orders keep the pizza name they captured at
// placement time.
func (s *Service) DeletePizza(ctx context.Context, index int, asAdmin bool) error {
	_, span := tracer.Start(ctx, "Service.DeletePizza", trace.WithAttributes(
		attribute.Int("menu.index", index),
	))
	defer span.End()

	if !asAdmin {
		return errUnauthorized()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.menu) {
		return notFoundf("Pizza with ID %d not found", index)
	}

	s.menu = append(s.menu[:index], s.menu[index+1:]...)
	return nil
}

// menuIndex reports the position of name in the menu, compared
// case-insensitively, or -1. Callers must hold mu.
func (s *Service) menuIndex(name string) int {
	name = strings.ToLower(name)
	for i, p := range s.menu {
		if strings.ToLower(p) == name {
			return i
		}
	}
	return -1
}
