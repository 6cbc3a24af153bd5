package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"true", Bool(true)},
		{"TRUE", Bool(true)},
		{"False", Bool(false)},
		{"yes", String("yes")},
		{"1", String("1")},
		{"", String("")},
		{"leaf", String("leaf")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Coerce(tt.in)
			assert.True(t, got.Equal(tt.want), "Coerce(%q) = %v (%s)", tt.in, got, got.Kind())
		})
	}
}

func TestValue_EqualRequiresSameKind(t *testing.T) {
	assert.False(t, String("true").Equal(Bool(true)))
	assert.False(t, String("").Equal(Null))
	assert.True(t, Null.Equal(Value{}))
	assert.True(t, Bool(false).Equal(Bool(false)))
}

func TestFromInterface(t *testing.T) {
	assert.True(t, FromInterface(nil).IsNull())
	assert.True(t, FromInterface(true).Equal(Bool(true)))
	assert.True(t, FromInterface("False").Equal(Bool(false)))
	assert.True(t, FromInterface(float64(1500)).Equal(String("1500")))
}

func TestValue_JSONKeepsKind(t *testing.T) {
	attrs := Attributes{"mpls": Bool(true), "bgp": String("true"), "gone": Null}

	data, err := json.Marshal(attrs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mpls":true,"bgp":"true","gone":null}`, string(data))

	var back Attributes
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, KindBool, back["mpls"].Kind())
	assert.Equal(t, KindString, back["bgp"].Kind())
	assert.True(t, back["gone"].IsNull())

	var bad Value
	assert.Error(t, json.Unmarshal([]byte(`12`), &bad))
}

func TestAttributes_Changed(t *testing.T) {
	current := Attributes{"serial": String("A"), "device_model": String("X")}
	desired := Attributes{"serial": String("B"), "device_model": String("X")}

	from, to := current.Changed(desired, []string{"device_model", "serial"})
	assert.Equal(t, Attributes{"serial": String("A")}, from)
	assert.Equal(t, Attributes{"serial": String("B")}, to)

	from, to = current.Changed(current.Clone(), []string{"device_model", "serial"})
	assert.Nil(t, from)
	assert.Nil(t, to)
}
