package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCost(t *testing.T) {
	tests := []struct {
		in      string
		want    Cost
		wantErr bool
	}{
		{in: "7", want: 700},
		{in: "7.5", want: 750},
		{in: "7.05", want: 705},
		{in: "0.99", want: 99},
		{in: ".5", want: 50},
		{in: "-1.00", want: -100},
		{in: "1.234", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: ".", wantErr: true},
		{in: "7.500", wantErr: true},
		{in: "1e2", want: 10000},
		{in: "1e20", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCost(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCostJSON(t *testing.T) {
	var body struct {
		Cost *Cost `json:"cost"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"cost": 7}`), &body))
	require.NotNil(t, body.Cost)
	assert.Equal(t, Cost(700), *body.Cost)

	require.NoError(t, json.Unmarshal([]byte(`{"cost": "5.25"}`), &body))
	assert.Equal(t, Cost(525), *body.Cost)

	assert.Error(t, json.Unmarshal([]byte(`{"cost": "cheap"}`), &body))

	out, err := json.Marshal(Cost(700))
	require.NoError(t, err)
	assert.JSONEq(t, `"7.00"`, string(out))
}

func TestCostString(t *testing.T) {
	assert.Equal(t, "0.00", Cost(0).String())
	assert.Equal(t, "0.05", Cost(5).String())
	assert.Equal(t, "999.99", Cost(99999).String())
	assert.Equal(t, "-1.50", Cost(-150).String())
	assert.Equal(t, "12.30", Cost(1230).Decimal().StringFixed(2))
}

func TestRecipeResponseEmptyAssociations(t *testing.T) {
	r := Recipe{ID: 3, Title: "Soup", TimeMinutes: 25, Cost: 700}

	out, err := json.Marshal(r.Response())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 3, "title": "Soup", "time_minutes": 25, "cost": "7.00",
		"link": "", "image": null, "tags": [], "ingredients": []
	}`, string(out))

	r.Image = "uploads/recipe/abc.png"
	require.NotNil(t, r.ImageURL())
	assert.Equal(t, "/media/uploads/recipe/abc.png", *r.ImageURL())
}
