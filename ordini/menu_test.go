package ordini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPizza(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		pizza    string
		asAdmin  bool
		wantKind Kind
		wantMenu []string
	}{
		{
			name:     "valid pizza",
			pizza:    "Hawaiian",
			asAdmin:  true,
			wantMenu: []string{"Margherita", "Pepperoni", "Hawaiian"},
		},
		{
			name:     "trims whitespace",
			pizza:    "  Quattro Formaggi  ",
			asAdmin:  true,
			wantMenu: []string{"Margherita", "Pepperoni", "Quattro Formaggi"},
		},
		{
			name:     "not admin",
			pizza:    "Hawaiian",
			asAdmin:  false,
			wantKind: KindUnauthorized,
		},
		{
			name:     "empty name",
			pizza:    "   ",
			asAdmin:  true,
			wantKind: KindInvalidArgument,
		},
		{
			name:     "name too long",
			pizza:    "Pizza con un nome assolutamente troppo lungo per stare nel menu",
			asAdmin:  true,
			wantKind: KindInvalidArgument,
		},
		{
			name:     "duplicate is rejected case-insensitively",
			pizza:    "pepperoni",
			asAdmin:  true,
			wantKind: KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			svc := NewService([]string{"Margherita", "Pepperoni"})

			// Act
			err := svc.AddPizza(ctx, tt.pizza, tt.asAdmin)

			// Assert
			if tt.wantKind != 0 {
				assert.True(t, IsKind(err, tt.wantKind), "got %v", err)
				assert.Equal(t, []string{"Margherita", "Pepperoni"}, svc.Menu(ctx))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantMenu, svc.Menu(ctx))
		})
	}
}

func TestAddPizzaAppearsExactlyOnce(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc := NewService(nil)

	// Act
	require.NoError(t, svc.AddPizza(ctx, "Hawaiian", true))
	err := svc.AddPizza(ctx, "hawaiian", true)

	// Assert
	assert.True(t, IsKind(err, KindConflict))
	assert.Equal(t, []string{"Hawaiian"}, svc.Menu(ctx))
}

func TestDeletePizza(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		index    int
		asAdmin  bool
		wantKind Kind
		wantMenu []string
	}{
		{
			name:     "first entry, later ones shift down",
			index:    0,
			asAdmin:  true,
			wantMenu: []string{"Pepperoni", "Hawaiian"},
		},
		{
			name:     "middle entry",
			index:    1,
			asAdmin:  true,
			wantMenu: []string{"Margherita", "Hawaiian"},
		},
		{
			name:     "last entry",
			index:    2,
			asAdmin:  true,
			wantMenu: []string{"Margherita", "Pepperoni"},
		},
		{
			name:     "not admin",
			index:    0,
			asAdmin:  false,
			wantKind: KindUnauthorized,
		},
		{
			name:     "negative index",
			index:    -1,
			asAdmin:  true,
			wantKind: KindNotFound,
		},
		{
			name:     "index past the end",
			index:    3,
			asAdmin:  true,
			wantKind: KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			svc := NewService([]string{"Margherita", "Pepperoni", "Hawaiian"})

			// Act
			err := svc.DeletePizza(ctx, tt.index, tt.asAdmin)

			// Assert
			if tt.wantKind != 0 {
				assert.True(t, IsKind(err, tt.wantKind), "got %v", err)
				assert.Equal(t, []string{"Margherita", "Pepperoni", "Hawaiian"}, svc.Menu(ctx))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantMenu, svc.Menu(ctx))
		})
	}
}

func TestDeletePizzaKeepsExistingOrders(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc := NewService([]string{"Margherita"})
	order, err := svc.PlaceOrder(ctx, "Margherita", "", "1 Main St")
	require.NoError(t, err)

	// Act
	require.NoError(t, svc.DeletePizza(ctx, 0, true))

	// Assert: the order captured the name as a value, not a menu reference
	got, err := svc.Order(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "margherita", got.Pizza)
	assert.Empty(t, svc.Menu(ctx))
}
