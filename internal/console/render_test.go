package console_test

import (
	"testing"

	"inventory/internal/console"
	"inventory/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	products := []models.Product{
		{ID: 1, Name: "A", Price: 2.5, Stock: 4},
		{ID: 2, Name: "B", Price: 10, Stock: 5},
		{ID: 3, Name: "C", Price: 1, Stock: 0},
		{ID: 4, Name: "D", Price: 0.5, Stock: 100},
	}

	s := console.Summarize(products)
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5*4+10*5+0+0.5*100, s.TotalValue, 1e-9)
	assert.Equal(t, 2, s.LowStock)
	assert.Equal(t, products[:3], s.Recent)

	empty := console.Summarize(nil)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.TotalValue)
	assert.Empty(t, empty.Recent)
}

func TestRenderer_Views(t *testing.T) {
	r, err := console.NewRenderer()
	require.NoError(t, err)

	products := []models.Product{{ID: 7, Name: "Tom & Jerry", Price: 3, Stock: 2}}

	dashboard, err := r.View(console.ViewDashboard, products, "me@example.com")
	require.NoError(t, err)
	assert.Contains(t, string(dashboard), `data-stat="count">1<`)
	assert.Contains(t, string(dashboard), `data-stat="total-value">$6.00<`)
	assert.Contains(t, string(dashboard), `data-stat="low-stock">1<`)
	assert.Contains(t, string(dashboard), "Tom &amp; Jerry")

	list, err := r.View(console.ViewProducts, products, "")
	require.NoError(t, err)
	assert.Contains(t, string(list), `data-id="7"`)

	settings, err := r.View(console.ViewSettings, nil, "me@example.com")
	require.NoError(t, err)
	assert.Contains(t, string(settings), "me@example.com")
	assert.Contains(t, string(settings), `data-action="logout"`)

	_, err = r.View("reports", nil, "")
	assert.Error(t, err)

	msg, err := r.Error("<oops>")
	require.NoError(t, err)
	assert.Contains(t, string(msg), "&lt;oops&gt;")
}

func TestParseAction(t *testing.T) {
	a, err := console.ParseAction("edit", " 12 ")
	require.NoError(t, err)
	assert.Equal(t, console.ActionEdit, a.Type)
	require.NotNil(t, a.ID)
	assert.Equal(t, 12, *a.ID)

	a, err = console.ParseAction("logout", "")
	require.NoError(t, err)
	assert.Nil(t, a.ID)

	_, err = console.ParseAction("edit", "x")
	assert.Error(t, err)

	v, ok := console.ParseView("settings")
	assert.True(t, ok)
	assert.Equal(t, console.ViewSettings, v)
	_, ok = console.ParseView("reports")
	assert.False(t, ok)
}
