package product

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumeric_UnmarshalKeepsTextForm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `19.99`, want: "19.99"},
		{in: `4.5`, want: "4.5"},
		{in: `4.50`, want: "4.5"},
		{in: `10`, want: "10"},
		{in: `"12.00"`, want: "12.00"},
		{in: `"abc"`, want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var n Numeric
			require.NoError(t, json.Unmarshal([]byte(tt.in), &n))
			assert.Equal(t, tt.want, n.String())
		})
	}
}

func TestNumeric_UnmarshalRejectsOtherTypes(t *testing.T) {
	for _, in := range []string{`true`, `[1]`, `{"a":1}`} {
		var n Numeric
		assert.Error(t, json.Unmarshal([]byte(in), &n), in)
	}
}

func TestNewFromCreateRequest(t *testing.T) {
	var req CreateProductRequest
	body := `{"images":["a.png"],"title":"Rattle","price":19.99,"rating":4.5,"category":"toys","des":"soft","flashSale":true,"flashSaleDate":"2026-10-20"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.FixedZone("x", 3600))
	p := NewFromCreateRequest(req, now)

	assert.True(t, ValidID(p.ID))
	assert.Equal(t, "19.99", p.Price)
	assert.Equal(t, "4.5", p.Rating)
	assert.Equal(t, "soft", p.Description)
	assert.True(t, p.FlashSale)
	assert.Equal(t, now.UTC(), p.CreatedAt)
	assert.Equal(t, []string{"a.png"}, p.Images)
}

func TestNewFromCreateRequest_DescriptionWinsOverAlias(t *testing.T) {
	p := NewFromCreateRequest(CreateProductRequest{Title: "x", Price: "1", Rating: "2", Des: "old", Description: "new"}, time.Now())

	assert.Equal(t, "new", p.Description)
	assert.NotNil(t, p.Images)
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID(NewID()))
	assert.False(t, ValidID("123"))
	assert.False(t, ValidID("zzzzzzzzzzzzzzzzzzzzzzzz"))
}
