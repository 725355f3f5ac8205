package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrder_HasStore(t *testing.T) {
	paris := "Paris"
	empty := ""

	tests := []struct {
		name  string
		store *string
		want  bool
	}{
		{"identified", &paris, true},
		{"nil store", nil, false},
		{"empty store", &empty, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Order{Store: tt.store}
			assert.Equal(t, tt.want, o.HasStore())
		})
	}
}

func TestOrder_ItemsSold(t *testing.T) {
	o := Order{
		LineItems: []LineItem{
			{ProductID: 101, Quantity: 3, Total: decimal.NewFromInt(60)},
			{ProductID: 102, Quantity: 2, Total: decimal.NewFromInt(40)},
		},
	}
	assert.Equal(t, int64(5), o.ItemsSold())

	var empty Order
	assert.Equal(t, int64(0), empty.ItemsSold())
}

func TestOrder_Meta(t *testing.T) {
	o := Order{
		Metadata: []MetaEntry{
			{Key: "_store_id", Value: "Lyon"},
			{Key: "_gift", Value: "yes"},
		},
	}

	v, ok := o.Meta("_store_id")
	assert.True(t, ok)
	assert.Equal(t, "Lyon", v)

	_, ok = o.Meta("_missing")
	assert.False(t, ok)
}
